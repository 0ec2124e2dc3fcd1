package fakeportal

import (
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/jrsteele09/go-edoctorat/users"
)

// Dataset is the domain content a Portal serves.
type Dataset struct {
	Laboratory  portal.Laboratory
	Professeurs []portal.Professeur
	Sujets      []portal.Sujet
	Examiners   []portal.Examiner
	Commissions []portal.Commission
	Candidats   map[string]portal.Candidat // by e-mail
}

// DemoAccount is a seeded login of the demo dataset.
type DemoAccount struct {
	User     users.User
	Password string
}

// DemoDataset returns a small lab with three professors, their subjects and
// a few applicants.
func DemoDataset() Dataset {
	alaoui := portal.Professeur{ID: 1, Nom: "Alaoui", Prenom: "Karim", Grade: "PES", Email: "k.alaoui@uae.ac.ma"}
	bennani := portal.Professeur{ID: 2, Nom: "Bennani", Prenom: "Sara", Grade: "PH", Email: "s.bennani@uae.ac.ma"}
	chraibi := portal.Professeur{ID: 3, Nom: "Chraibi", Prenom: "Omar", Grade: "PA", Email: "o.chraibi@uae.ac.ma"}

	vision := portal.Sujet{ID: 10, Titre: "Vision par ordinateur pour l'agriculture", Professeur: &alaoui, Publier: true}
	nlp := portal.Sujet{ID: 11, Titre: "Traitement automatique de la darija", Professeur: &chraibi, CoDirecteur: &bennani, Publier: true}
	robotique := portal.Sujet{ID: 12, Titre: "Robotique collaborative", Professeur: &chraibi, Publier: true}

	amrani := portal.Candidat{ID: 100, CNE: "R130000001", Nom: "Amrani", Prenom: "Yassine", Email: "y.amrani@etu.ma"}
	berrada := portal.Candidat{ID: 101, CNE: "R130000002", Nom: "Berrada", Prenom: "Salma", Email: "s.berrada@etu.ma"}
	cherkaoui := portal.Candidat{ID: 102, CNE: "R130000003", Nom: "Cherkaoui", Prenom: "Imane", Email: "i.cherkaoui@etu.ma"}

	return Dataset{
		Laboratory:  portal.Laboratory{ID: 7, Nom: "LIST"},
		Professeurs: []portal.Professeur{alaoui, bennani, chraibi},
		Sujets:      []portal.Sujet{vision, nlp, robotique},
		Examiners: []portal.Examiner{
			{ID: 1, Sujet: &vision, CNE: amrani.CNE, Candidat: &amrani},
			{ID: 2, Sujet: &vision, CNE: berrada.CNE, Candidat: &berrada},
			{ID: 3, Sujet: &nlp, CNE: berrada.CNE, Candidat: &berrada},
			{ID: 4, Sujet: &nlp, CNE: cherkaoui.CNE, Candidat: &cherkaoui},
		},
		Candidats: map[string]portal.Candidat{
			amrani.Email:    amrani,
			berrada.Email:   berrada,
			cherkaoui.Email: cherkaoui,
		},
	}
}

// DemoAccounts returns one verified login per role of the demo dataset.
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{User: users.User{Email: "directeur.labo@uae.ac.ma", Nom: "Alaoui", Prenom: "Karim", Roles: []string{roles.DirecteurLabo, roles.Professeur}, ProfesseurID: 1, LaboratoireID: 7, Verified: true}, Password: "labo"},
		{User: users.User{Email: "s.bennani@uae.ac.ma", Nom: "Bennani", Prenom: "Sara", Roles: []string{roles.Professeur}, ProfesseurID: 2, Verified: true}, Password: "prof"},
		{User: users.User{Email: "directeur.ced@uae.ac.ma", Nom: "Idrissi", Prenom: "Nadia", Roles: []string{roles.DirecteurCED}, ProfesseurID: 4, Verified: true}, Password: "ced"},
		{User: users.User{Email: "directeur.pole@uae.ac.ma", Nom: "Tazi", Prenom: "Hamza", Roles: []string{roles.DirecteurPole}, ProfesseurID: 5, Verified: true}, Password: "pole"},
		{User: users.User{Email: "scolarite@uae.ac.ma", Nom: "Fassi", Prenom: "Leila", Roles: []string{roles.Scolarite}, Verified: true}, Password: "scol"},
		{User: users.User{Email: "y.amrani@etu.ma", Nom: "Amrani", Prenom: "Yassine", Roles: []string{roles.Candidat}, Verified: true}, Password: "cand"},
	}
}

// Seed loads the demo accounts into p.
func (p *Portal) Seed(accounts []DemoAccount) error {
	for _, a := range accounts {
		if _, err := p.AddUser(a.User, a.Password); err != nil {
			return err
		}
	}
	return nil
}
