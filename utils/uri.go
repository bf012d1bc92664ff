package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ResourceURI builds a fresh resource identifier of the form
// {base}/{collection}/{uuid}.
func ResourceURI(base, collection string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(base, "/"), collection, uuid.NewString())
}
