package dataprovider

import (
	"github.com/keboola/go-jsonapi-client/pkg/request"
)

// ListRequest returns a page of records, with the total count of records.
func (p *Provider) ListRequest(resource string, params ListParams) request.APIRequest[*ListResult] {
	return newAPIRequest[*ListResult](p, VerbGetList, resource, params)
}

// GetOneRequest returns one record, the response body is returned as-is.
func (p *Provider) GetOneRequest(resource string, id ID) request.APIRequest[*RecordResult] {
	return newAPIRequest[*RecordResult](p, VerbGetOne, resource, GetOneParams{ID: id})
}

// CreateRequest creates a record from the data, the response body is returned as-is.
func (p *Provider) CreateRequest(resource string, data any) request.APIRequest[*RecordResult] {
	return newAPIRequest[*RecordResult](p, VerbCreate, resource, CreateParams{Data: data})
}

// UpdateRequest replaces the record data, the response body is returned as-is.
func (p *Provider) UpdateRequest(resource string, id ID, data any) request.APIRequest[*RecordResult] {
	return newAPIRequest[*RecordResult](p, VerbUpdate, resource, UpdateParams{ID: id, Data: data})
}

// DeleteRequest deletes the record, the result contains the requested ID.
func (p *Provider) DeleteRequest(resource string, id ID) request.APIRequest[*DeleteResult] {
	return newAPIRequest[*DeleteResult](p, VerbDelete, resource, DeleteParams{ID: id})
}

// GetManyRequest returns records by IDs, with the total count of records.
func (p *Provider) GetManyRequest(resource string, ids ...ID) request.APIRequest[*ListResult] {
	return newAPIRequest[*ListResult](p, VerbGetMany, resource, GetManyParams{IDs: ids})
}
