package dataprovider

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// ID of a record. Strings and numbers are supported, it is converted to a URL path segment by the cast package.
type ID = any

// Params of a verb. The set of implementations is closed:
// ListParams, GetOneParams, CreateParams, UpdateParams, DeleteParams and GetManyParams.
type Params interface {
	// Verb returns the verb the params belong to.
	Verb() Verb
	validate() error
}

// Pagination defines a zero-based half-open range of records [Page*PerPage, (Page+1)*PerPage).
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// Sort is accepted for compatibility with the admin UI, it is not sent to the API.
type Sort struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type ListParams struct {
	Pagination Pagination `json:"pagination"`
	// Sort is ignored, sorting is not supported.
	Sort Sort `json:"sort"`
	// Filter is ignored, filtering is not supported.
	Filter map[string]any `json:"filter"`
}

type GetOneParams struct {
	ID ID `json:"id"`
}

type CreateParams struct {
	Data any `json:"data"`
}

type UpdateParams struct {
	ID   ID  `json:"id"`
	Data any `json:"data"`
}

type DeleteParams struct {
	ID ID `json:"id"`
}

type GetManyParams struct {
	IDs []ID `json:"ids"`
}

func (ListParams) Verb() Verb    { return VerbGetList }
func (GetOneParams) Verb() Verb  { return VerbGetOne }
func (CreateParams) Verb() Verb  { return VerbCreate }
func (UpdateParams) Verb() Verb  { return VerbUpdate }
func (DeleteParams) Verb() Verb  { return VerbDelete }
func (GetManyParams) Verb() Verb { return VerbGetMany }

// Range returns the first included and the first excluded record index.
func (p Pagination) Range() (start, end int) {
	return p.Page * p.PerPage, (p.Page + 1) * p.PerPage
}

// checkParamsType rejects pointers to params, a nil pointer would panic in the Verb method.
func checkParamsType(params Params) error {
	switch params.(type) {
	case *ListParams, *GetOneParams, *CreateParams, *UpdateParams, *DeleteParams, *GetManyParams:
		return fmt.Errorf(`unexpected params type "%T", params must be passed by value`, params)
	default:
		return nil
	}
}

func (p ListParams) validate() error {
	if p.Pagination.Page < 0 {
		return fmt.Errorf(`page must be >= 0, found %d`, p.Pagination.Page)
	}
	if p.Pagination.PerPage <= 0 {
		return fmt.Errorf(`perPage must be > 0, found %d`, p.Pagination.PerPage)
	}
	// The end of the range must fit into int
	if p.Pagination.Page > math.MaxInt/p.Pagination.PerPage-1 {
		return fmt.Errorf(`page %d with perPage %d is out of range`, p.Pagination.Page, p.Pagination.PerPage)
	}
	return nil
}

func (p GetOneParams) validate() error {
	return validateID(p.ID)
}

func (p CreateParams) validate() error {
	return nil
}

func (p UpdateParams) validate() error {
	return validateID(p.ID)
}

func (p DeleteParams) validate() error {
	return validateID(p.ID)
}

func (p GetManyParams) validate() error {
	for i, id := range p.IDs {
		if err := validateID(id); err != nil {
			return fmt.Errorf(`ids[%d]: %w`, i, err)
		}
	}
	return nil
}

func validateID(id ID) error {
	_, err := idToString(id)
	return err
}

func idToString(id ID) (string, error) {
	if id == nil {
		return "", fmt.Errorf(`id is not set`)
	}
	str, err := cast.ToStringE(id)
	if err != nil {
		return "", fmt.Errorf(`id of type "%T" is not supported`, id)
	}
	if str == "" {
		return "", fmt.Errorf(`id is empty`)
	}
	return str, nil
}
