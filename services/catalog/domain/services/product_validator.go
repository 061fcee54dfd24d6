// Package services contains stateless domain services for the catalog bounded context.
// They enforce listing rules on fully built domain types and depend on nothing
// beyond the domain layer.
package services

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/services/catalog/domain/models"
)

// ValidateName enforces listing rules for a product name beyond its length:
//   - no leading or trailing whitespace
//   - no control characters
//   - no consecutive spaces
//
// An empty name is allowed here; required-ness belongs to the caller.
func ValidateName(field, s string) error {
	if s == "" {
		return nil
	}
	if s != strings.TrimSpace(s) {
		return fmt.Errorf("%s must not have leading or trailing whitespace", field)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s must not contain control characters", field)
		}
	}
	if strings.Contains(s, "  ") {
		return fmt.Errorf("%s must not contain consecutive spaces", field)
	}
	return nil
}

// ValidateImage accepts object keys and absolute http(s) URLs.
func ValidateImage(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("image reference must not be empty")
	}
	if !strings.Contains(ref, "://") {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("image %q must be an http(s) URL or an object key", ref)
	}
	return nil
}

// ValidateProduct performs cross-field checks on a product built through
// models.NewProduct or changed through Apply, before it is persisted.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product cannot be nil")
	}
	if p.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}
	if p.SellerID == uuid.Nil {
		return fmt.Errorf("seller_id must be set")
	}
	if p.CategoryID == uuid.Nil {
		return fmt.Errorf("category_id must be set")
	}
	if err := ValidateName("name", p.Name); err != nil {
		return err
	}
	if err := ValidateName("name_en", p.NameEn); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(p.Images))
	for _, img := range p.Images {
		if err := ValidateImage(img); err != nil {
			return err
		}
		if _, dup := seen[img]; dup {
			return fmt.Errorf("image %q is listed twice", img)
		}
		seen[img] = struct{}{}
	}
	return nil
}
