// Package service implements the video collection and training operations.
// Every operation is a short read-modify-write against the store; failures
// come back as *domain.Error values whose message is safe to show a user.
package service

import (
	"errors"
	"strings"

	"github.com/gookit/validate"
	"github.com/sirupsen/logrus"

	"tubetrack/internal/domain"
	"tubetrack/internal/storage"
	"tubetrack/internal/youtube"
)

func init() {
	validate.AddValidator("youtubeURL", func(val any) bool {
		s, ok := val.(string)
		return ok && youtube.IsVideoURL(s)
	})
}

// checkInput runs the struct's validate tags and reports the first failure
// as a validation error.
func checkInput(in any) error {
	v := validate.Struct(in)
	if v.Validate() {
		return nil
	}
	return domain.Validationf("%s", v.Errors.One())
}

// storeError turns a store failure into an operation error. Domain errors
// raised inside update callbacks pass through untouched, missing documents
// become not-found errors, and anything else is logged and reported as msg.
func storeError(log logrus.FieldLogger, err error, kind func(string, ...any) error, msg string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	var nf *storage.NotFoundError
	if errors.As(err, &nf) {
		return domain.NotFoundf("%s %s not found", noun(nf.Kind), nf.ID)
	}
	log.WithError(err).Error(msg)
	return kind("%s", capitalize(msg))
}

func noun(kind string) string {
	switch kind {
	case storage.CollectionsKind:
		return "collection"
	case storage.MonthsKind:
		return "month"
	}
	return "document"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func dayNotFound(monthID string, dayNumber int) error {
	return domain.NotFoundf("day %d not found in %s", dayNumber, monthID)
}

func linkNotFound(collectionID, linkID string) error {
	return domain.NotFoundf("link %s not found in collection %s", linkID, collectionID)
}

func missingCategory(collectionID, category string) error {
	return domain.Validationf("category %q does not exist in collection %s", category, collectionID)
}
