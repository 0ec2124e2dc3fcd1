package portal

// Candidat is a doctoral applicant's dossier.
type Candidat struct {
	ID                   int64     `json:"id,omitempty"`
	CNE                  string    `json:"cne,omitempty"`
	Pays                 string    `json:"pays,omitempty"`
	Nom                  string    `json:"nom,omitempty"`
	Prenom               string    `json:"prenom,omitempty"`
	Email                string    `json:"email,omitempty"`
	CIN                  string    `json:"cin,omitempty"`
	NomCandidatAr        string    `json:"nomCandidatAr,omitempty"`
	PrenomCandidatAr     string    `json:"prenomCandidatAr,omitempty"`
	Adresse              string    `json:"adresse,omitempty"`
	AdresseAr            string    `json:"adresseAr,omitempty"`
	Sexe                 string    `json:"sexe,omitempty"`
	VilleDeNaissance     string    `json:"villeDeNaissance,omitempty"`
	VilleDeNaissanceAr   string    `json:"villeDeNaissanceAr,omitempty"`
	Ville                string    `json:"ville,omitempty"`
	DateDeNaissance      string    `json:"dateDeNaissance,omitempty"`
	TypeDeHandicape      string    `json:"typeDeHandiCape,omitempty"`
	Academie             string    `json:"academie,omitempty"`
	TelCandidat          string    `json:"telCandidat,omitempty"`
	PathCV               string    `json:"pathCv,omitempty"`
	PathPhoto            string    `json:"pathPhoto,omitempty"`
	EtatDossier          *int      `json:"etatDossier,omitempty"`
	CommentaireScolarite string    `json:"commentaireScolarite,omitempty"`
	SituationFamiliale   string    `json:"situation_familiale,omitempty"`
	Fonctionnaire        string    `json:"fonctionnaire,omitempty"`
	Diplomes             []Diplome `json:"diplomes,omitempty"`
}

// Dossier states set by the scolarite service.
const (
	DossierPending  = 0
	DossierValid    = 1
	DossierRejected = 2
)

// Annexe is a file attached to a diploma.
type Annexe struct {
	ID         int64  `json:"id,omitempty"`
	TypeAnnexe string `json:"typeAnnexe,omitempty"`
	Titre      string `json:"titre,omitempty"`
	PathFile   string `json:"pathFile,omitempty"`
}

// Diplome is one entry of a candidate's academic record.
type Diplome struct {
	ID             int64    `json:"id,omitempty"`
	Intitule       string   `json:"intitule"`
	Type           string   `json:"type"`
	DateCommission string   `json:"dateCommission,omitempty"`
	Mention        string   `json:"mention,omitempty"`
	Pays           string   `json:"pays,omitempty"`
	Etablissement  string   `json:"etablissement,omitempty"`
	Specialite     string   `json:"specialite,omitempty"`
	Ville          string   `json:"ville,omitempty"`
	Province       string   `json:"province,omitempty"`
	MoyenGenerale  float64  `json:"moyen_generale,omitempty"`
	Annexes        []Annexe `json:"annexes,omitempty"`
}

// Professeur is a faculty member; directors are professors too.
type Professeur struct {
	ID     int64  `json:"id"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Grade  string `json:"grade,omitempty"`
	Email  string `json:"email,omitempty"`
}

// FullName is "Prenom Nom".
func (p Professeur) FullName() string {
	if p.Prenom == "" {
		return p.Nom
	}
	return p.Prenom + " " + p.Nom
}

// Ced is a doctoral studies centre.
type Ced struct {
	ID    int64  `json:"id,omitempty"`
	Titre string `json:"titre"`
}

// FormationDoctorale is a doctoral programme.
type FormationDoctorale struct {
	ID                int64  `json:"id"`
	Ced               *Ced   `json:"ced,omitempty"`
	Etablissement     string `json:"etablissement,omitempty"`
	AxeDeRecherche    string `json:"axeDeRecherche,omitempty"`
	PathImage         string `json:"pathImage,omitempty"`
	Titre             string `json:"titre"`
	Initiale          string `json:"initiale,omitempty"`
	DateAccreditation string `json:"dateAccreditation,omitempty"`
}

// Sujet is a thesis subject proposed by a professor.
type Sujet struct {
	ID                 int64               `json:"id"`
	Professeur         *Professeur         `json:"professeur,omitempty"`
	CoDirecteur        *Professeur         `json:"coDirecteur,omitempty"`
	Titre              string              `json:"titre"`
	Description        string              `json:"description,omitempty"`
	FormationDoctorale *FormationDoctorale `json:"formationDoctorale,omitempty"`
	Publier            bool                `json:"publier"`
	Laboratoire        string              `json:"laboratoire,omitempty"`
}

// DirectedBy reports whether professeurID directs or co-directs the subject.
func (s Sujet) DirectedBy(professeurID int64) bool {
	return (s.Professeur != nil && s.Professeur.ID == professeurID) ||
		(s.CoDirecteur != nil && s.CoDirecteur.ID == professeurID)
}

// SujetInput is the body for creating or updating a subject.
type SujetInput struct {
	Titre                string `json:"titre"`
	Description          string `json:"description"`
	CoDirecteurID        *int64 `json:"coDirecteurId,omitempty"`
	FormationDoctoraleID int64  `json:"formationDoctoraleId"`
	ProfesseurID         *int64 `json:"professeurId,omitempty"`
}

// Commission is an admission interview panel.
type Commission struct {
	ID             int64        `json:"id"`
	DateCommission string       `json:"dateCommission"`
	Heure          string       `json:"heure"`
	Valider        bool         `json:"valider"`
	Lieu           string       `json:"lieu"`
	Labo           int64        `json:"labo,omitempty"`
	Participants   []Professeur `json:"participants,omitempty"`
	Sujets         []Sujet      `json:"sujets,omitempty"`
}

// CommissionInput creates or edits a bare commission.
type CommissionInput struct {
	DateCommission string `json:"dateCommission"`
	Heure          string `json:"heure"`
	Lieu           string `json:"lieu"`
	Labo           int64  `json:"labo,omitempty"`
}

// CommissionDetails creates a commission together with its panel and candidates.
type CommissionDetails struct {
	DateCommission string   `json:"dateCommission"`
	Heure          string   `json:"heure"`
	Lieu           string   `json:"lieu"`
	Labo           int64    `json:"labo"`
	ParticipantIDs []int64  `json:"participantIds"`
	SujetIDs       []int64  `json:"sujetIds"`
	CandidatCNEs   []string `json:"candidatCnes"`
}

// Examiner is a candidate's result for a subject in a commission.
type Examiner struct {
	ID            int64     `json:"id"`
	Sujet         *Sujet    `json:"sujet,omitempty"`
	CNE           string    `json:"cne,omitempty"`
	NoteDossier   float64   `json:"noteDossier"`
	NoteEntretien float64   `json:"noteEntretien"`
	Decision      string    `json:"decision,omitempty"`
	Commission    int64     `json:"commission,omitempty"`
	Candidat      *Candidat `json:"candidat,omitempty"`
	Publier       bool      `json:"publier"`
	Valider       bool      `json:"valider,omitempty"`
}

// ExaminerValidation is the body of a lab director's decision on a result.
type ExaminerValidation struct {
	Valider  *bool  `json:"valider,omitempty"`
	Decision string `json:"decision,omitempty"`
}

// Postulation is a candidate's application to a subject.
type Postulation struct {
	ID       int64     `json:"id"`
	PathFile string    `json:"pathFile,omitempty"`
	Sujet    *Sujet    `json:"sujet,omitempty"`
	Candidat *Candidat `json:"candidat,omitempty"`
	Etat     string    `json:"etat,omitempty"`
}

// PostulationJoined is the flattened view of an application for lab directors.
type PostulationJoined struct {
	ID                 int64  `json:"id"`
	CNE                string `json:"cne"`
	Nom                string `json:"nom"`
	Prenom             string `json:"prenom"`
	SujetPostule       string `json:"sujetPostule"`
	DirecteurNom       string `json:"directeurNom"`
	DirecteurPrenom    string `json:"directeurPrenom"`
	CodirecteurNom     string `json:"codirecteurNom,omitempty"`
	CodirecteurPrenom  string `json:"codirecteurPrenom,omitempty"`
	FormationDoctorale string `json:"formationDoctorale"`
}

// Inscription is an enrolment following a favourable decision.
type Inscription struct {
	ID                int64     `json:"id"`
	Candidat          *Candidat `json:"candidat,omitempty"`
	Sujet             *Sujet    `json:"sujet,omitempty"`
	DateDiposeDossier string    `json:"dateDiposeDossier,omitempty"`
	Remarque          string    `json:"remarque,omitempty"`
	Valider           bool      `json:"valider"`
	PathFile          string    `json:"pathFile,omitempty"`
}

// DirecteurLabo is the lab director's own profile.
type DirecteurLabo struct {
	ID                     int64  `json:"id"`
	Nom                    string `json:"nom"`
	Prenom                 string `json:"prenom"`
	Email                  string `json:"email,omitempty"`
	Departement            string `json:"departement,omitempty"`
	LaboratoireID          int64  `json:"laboratoireId"`
	LaboratoireNom         string `json:"laboratoireNom,omitempty"`
	LaboratoireDescription string `json:"laboratoireDescription,omitempty"`
}

// Laboratory identifies the lab of the current director.
type Laboratory struct {
	ID  int64  `json:"laboratoireId"`
	Nom string `json:"laboratoireNom,omitempty"`
}

// BaseConfig is the campaign configuration candidates are bound by.
type BaseConfig struct {
	MaxSujetPostuler               int    `json:"maxSujetPostuler"`
	DateDebutPostulerSujetCandidat string `json:"dateDebutPostulerSujetCandidat,omitempty"`
	DateFinPostulerSujetCandidat   string `json:"dateFinPostulerSujetCandidat,omitempty"`
	DateDebutModifierSujetProf     string `json:"dateDebutModifierSujetProf,omitempty"`
	DateFinModifierSujetProf       string `json:"dateFinModifierSujetProf,omitempty"`
}

// Calendrier is one entry of the campaign calendar.
type Calendrier struct {
	ID        int64  `json:"id"`
	Action    string `json:"action"`
	DateDebut string `json:"dateDebut"`
	DateFin   string `json:"dateFin"`
	Pour      string `json:"pour"`
}

// Notification tells a candidate about a convocation or a result.
type Notification struct {
	ID         int64       `json:"id"`
	Commission *Commission `json:"commission,omitempty"`
	Sujet      *Sujet      `json:"sujet,omitempty"`
	Type       string      `json:"type,omitempty"`
}

// UserInfo is the profile shown in page headers.
type UserInfo struct {
	Nom       string         `json:"nom,omitempty"`
	Prenom    string         `json:"prenom,omitempty"`
	Email     string         `json:"email,omitempty"`
	PathPhoto string         `json:"pathPhoto,omitempty"`
	Groups    []string       `json:"groups,omitempty"`
	Misc      map[string]any `json:"misc,omitempty"`
}

// DossierUpdate is the scolarite decision on a candidate's dossier.
type DossierUpdate struct {
	EtatDossier          *int   `json:"etatDossier,omitempty"`
	CommentaireScolarite string `json:"commentaireScolarite,omitempty"`
}

// Message is the acknowledgement of the publication endpoints.
type Message struct {
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}
