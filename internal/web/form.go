package web

import (
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/web/editor"
)

// editAction is one button of the edit form.
type editAction string

const (
	actionAdd    editAction = "add"
	actionDelete editAction = "delete"
	actionRemove editAction = "remove"
	actionSave   editAction = "save"
	actionCancel editAction = "cancel"
)

// Form field names of the edit page. Each row posts one value per field, in row order.
const (
	fieldKey      = "key"
	fieldValue    = "value"
	fieldIsNew    = "is_new"
	fieldToDelete = "to_delete"
	fieldAction   = "action"
	fieldVersion  = "version_id"
)

var (
	errMalformedForm = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed edit form")
	errUnknownAction = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown edit action")
)

// parseRows rebuilds the edit buffer from a posted form.
func parseRows(form url.Values) ([]editor.Row, error) {
	keys := form[fieldKey]
	values := form[fieldValue]
	isNew := form[fieldIsNew]
	toDelete := form[fieldToDelete]

	if len(values) != len(keys) || len(isNew) != len(keys) || len(toDelete) != len(keys) {
		return nil, errMalformedForm
	}

	rows := make([]editor.Row, len(keys))
	for i := range keys {
		newFlag, err := strconv.ParseBool(isNew[i])
		if err != nil {
			return nil, errMalformedForm
		}
		deleteFlag, err := strconv.ParseBool(toDelete[i])
		if err != nil {
			return nil, errMalformedForm
		}
		rows[i] = editor.Row{Key: keys[i], Value: values[i], IsNew: newFlag, ToDelete: deleteFlag}
	}
	return rows, nil
}

// parseAction splits "delete:3" into the action and its row index. Actions without
// an index return -1.
func parseAction(raw string) (editAction, int, error) {
	name, arg, hasArg := strings.Cut(raw, ":")
	action := editAction(name)

	switch action {
	case actionAdd, actionSave, actionCancel:
		if hasArg {
			return "", 0, errUnknownAction
		}
		return action, -1, nil
	case actionDelete, actionRemove:
		index, err := strconv.Atoi(arg)
		if !hasArg || err != nil {
			return "", 0, errUnknownAction
		}
		return action, index, nil
	default:
		return "", 0, errUnknownAction
	}
}
