// Package portal holds one client per actor of the doctoral portal. Each
// client is a thin typed wrapper over the shared api.Client; authentication,
// refresh and error mapping happen there.
package portal

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/roles"
	pkgerrors "github.com/pkg/errors"
)

// Portal groups the role clients over one connection.
type Portal struct {
	Account     *Account
	Candidats   *Candidats
	Professeurs *Professeurs
	Labo        *Labo
	Pole        *Pole
	CED         *CED
	Scolarite   *Scolarite
}

func New(c *api.Client, endpoints config.EndpointConfig) *Portal {
	return &Portal{
		Account:     &Account{api: c, endpoints: endpoints},
		Candidats:   &Candidats{api: c},
		Professeurs: &Professeurs{api: c},
		Labo:        &Labo{api: c},
		Pole:        &Pole{api: c},
		CED:         &CED{api: c},
		Scolarite:   &Scolarite{api: c},
	}
}

// Account covers the endpoints shared by every logged-in user.
type Account struct {
	api       *api.Client
	endpoints config.EndpointConfig
}

// Me returns the profile of the current user.
func (a *Account) Me(ctx context.Context) (*UserInfo, error) {
	return get[UserInfo](ctx, a.api, a.endpoints.GetCurrentUserEndpoint(), nil)
}

// UserInfo returns the header profile of the current user viewed as role.
func (a *Account) UserInfo(ctx context.Context, role roles.Role) (*UserInfo, error) {
	return get[UserInfo](ctx, a.api, "/api/get-user-info/"+url.PathEscape(role), nil)
}

func get[T any](ctx context.Context, c *api.Client, path string, query url.Values) (*T, error) {
	var out T
	if err := c.Get(ctx, path, query, &out); err != nil {
		return nil, pkgerrors.Wrapf(err, "GET %s", path)
	}
	return &out, nil
}

func list[T any](ctx context.Context, c *api.Client, path string, page api.Pagination) (*api.Page[T], error) {
	return get[api.Page[T]](ctx, c, path, page.Query())
}

func send[T any](ctx context.Context, c *api.Client, method, path string, body any) (*T, error) {
	var out T
	if err := c.Do(ctx, api.Request{Method: method, Path: path, Body: body}, &out); err != nil {
		return nil, pkgerrors.Wrapf(err, "%s %s", method, path)
	}
	return &out, nil
}

func remove(ctx context.Context, c *api.Client, path string) error {
	if err := c.Delete(ctx, path); err != nil {
		return pkgerrors.Wrapf(err, "DELETE %s", path)
	}
	return nil
}

func itemPath(collection string, id int64) string {
	return fmt.Sprintf("%s%d/", collection, id)
}
