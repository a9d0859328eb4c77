package workspace

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"cirrus/internal/config"
	"cirrus/internal/domain"
	wsSvc "cirrus/internal/domain/services/workspace"
)

// RootID is the path alias clients use for the root scope
const RootID = "root"

// nameRules validates a single folder or file name
func nameRules(maxLength int) []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, maxLength),
		validation.By(simpleName),
	}
}

func simpleName(value interface{}) error {
	s, _ := value.(string)
	switch {
	case strings.Contains(s, "/"):
		return errors.New("must not contain '/'")
	case s == "." || s == "..":
		return errors.New("must not be '.' or '..'")
	case strings.IndexFunc(s, unicode.IsControl) >= 0:
		return errors.New("must not contain control characters")
	}
	return nil
}

// ValidateName checks a folder or file name against the naming rules
func ValidateName(name string, maxLength int) error {
	if err := validation.Validate(name, nameRules(maxLength)...); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid name %q: %v", name, err)}
	}
	return nil
}

func validateCreateFolder(req *wsSvc.CreateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Owner, validation.Required),
		validation.Field(&req.Name, nameRules(config.MaxFolderNameLength)...),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

func validateUpload(req *wsSvc.UploadFileRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Owner, validation.Required),
		validation.Field(&req.Name, nameRules(config.MaxFileNameLength)...),
		validation.Field(&req.Size, validation.Min(int64(0))),
		validation.Field(&req.Content, validation.NotNil),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// SplitRelativePath turns "A/B/y.txt" into directory segments and a file name.
// Backslashes are treated as separators and a leading "./" or "/" is dropped.
// Segments are trimmed the same way CreateFolder trims names, so lookups and
// creates agree on the stored name.
func SplitRelativePath(relativePath string) (dirs []string, name string, err error) {
	if len(relativePath) > config.MaxRelativePathLength {
		return nil, "", &domain.ValidationError{
			Message: fmt.Sprintf("path exceeds maximum length of %d", config.MaxRelativePathLength),
		}
	}

	p := strings.ReplaceAll(relativePath, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	if p == "" {
		return nil, "", &domain.ValidationError{Message: "path is empty"}
	}

	segments := strings.Split(p, "/")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
		segment := segments[i]
		limit := config.MaxFolderNameLength
		if i == len(segments)-1 {
			limit = config.MaxFileNameLength
		}
		if err := ValidateName(segment, limit); err != nil {
			return nil, "", fmt.Errorf("path %q: %w", relativePath, err)
		}
	}

	return segments[:len(segments)-1], segments[len(segments)-1], nil
}

// NormalizeID maps "", "root" and nil to nil (root scope)
func NormalizeID(id *string) *string {
	if id == nil || *id == "" || *id == RootID {
		return nil
	}
	v := *id
	return &v
}
