package portal

import (
	"context"

	"github.com/jrsteele09/go-edoctorat/api"
)

const (
	cedCandidatsPath    = "/api/get-ced-candidats/"
	cedSujetsPath       = "/api/get-ced-sujets/"
	cedResultatsPath    = "/api/get-ced-resultats/"
	cedCommissionsPath  = "/api/get-ced-commissions/"
	cedInscriptionsPath = "/api/get-ced-inscriptions/"
	registrationRptPath = "/api/download-registration-report"
)

// CED is the doctoral school director's area.
type CED struct {
	api *api.Client
}

func (c *CED) Candidats(ctx context.Context, page api.Pagination) (*api.Page[Candidat], error) {
	return list[Candidat](ctx, c.api, cedCandidatsPath, page)
}

func (c *CED) Sujets(ctx context.Context, page api.Pagination) (*api.Page[Sujet], error) {
	return list[Sujet](ctx, c.api, cedSujetsPath, page)
}

func (c *CED) Resultats(ctx context.Context, page api.Pagination) (*api.Page[Examiner], error) {
	return list[Examiner](ctx, c.api, cedResultatsPath, page)
}

func (c *CED) Commissions(ctx context.Context, page api.Pagination) (*api.Page[Commission], error) {
	return list[Commission](ctx, c.api, cedCommissionsPath, page)
}

func (c *CED) Inscriptions(ctx context.Context, page api.Pagination) (*api.Page[Inscription], error) {
	return list[Inscription](ctx, c.api, cedInscriptionsPath, page)
}

// Report is a downloaded document.
type Report struct {
	Data        []byte
	ContentType string
}

// DownloadRegistrationReport fetches the registration report as produced by the backend.
func (c *CED) DownloadRegistrationReport(ctx context.Context) (*Report, error) {
	data, contentType, err := c.api.GetBlob(ctx, registrationRptPath, nil)
	if err != nil {
		return nil, err
	}
	return &Report{Data: data, ContentType: contentType}, nil
}
