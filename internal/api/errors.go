package api

import "net/http"

// Messages returned to clients. They are part of the public contract.
const (
	msgWelcome            = "Bienvenue sur l'API des articles !"
	msgEmptyTable         = "La table 'articles' est vide."
	msgDuplicateTitle     = "Un article avec ce titre existe déjà."
	msgFieldsRequired     = "Le titre, le contenu et l'auteur sont requis."
	msgIDRequired         = "L'ID de l'article est requis pour la mise à jour."
	msgIDAndTitleRequired = "L'ID et le nouveau titre sont requis."
	msgNotFound           = "Aucun article trouvé avec cet ID."
	msgTitleUpdated       = "Le titre de l'article a été mis à jour avec succès."
	msgDeleted            = "L'article a été supprimé avec succès."
	msgDeleteFailed       = "Erreur lors de la suppression de l'article : "
)

type ErrorKind int

const (
	// KindMalformed is a body that is not JSON at all.
	KindMalformed ErrorKind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindInternal
)

// Error is what a handler fails with. Message is shown to the client as is.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// internalError surfaces the driver message to the client, which is the
// only diagnostic the API gives for database failures.
func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}

func malformedError(err error) *Error {
	return &Error{Kind: KindMalformed, Message: err.Error(), Err: err}
}

// StatusFor maps an error to its HTTP status. Compatible mode reports every
// failure except malformed JSON as 500; strict mode distinguishes them.
func StatusFor(err *Error, strict bool) int {
	if err.Kind == KindMalformed {
		return http.StatusBadRequest
	}
	if !strict {
		return http.StatusInternalServerError
	}

	switch err.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindDuplicate:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
