package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	authsync "github.com/mr-hec24/expo-supabase-auth-starter"
)

// Rows adapts PostgREST to [authsync.RowStore]. Single-row reads use the
// pgrst.object media type so "no row" arrives as a distinct status instead
// of an empty array.
type Rows struct {
	rest   *restClient
	tokens TokenSource
}

var _ authsync.RowStore = (*Rows)(nil)

// SelectOne fetches the single row matching filter into dest. It fails
// with [authsync.ErrRowNotFound] when nothing matches.
func (r *Rows) SelectOne(ctx context.Context, table string, filter map[string]string, dest any) error {
	path := "/rest/v1/" + url.PathEscape(table) + "?select=*" + filterQuery(filter)
	headers := map[string]string{
		"Accept": "application/vnd.pgrst.object+json",
	}

	err := r.rest.doJSON(ctx, "GET", path, r.tokens.AccessToken(), headers, nil, dest)
	if err != nil {
		var api *apiError
		if errors.As(err, &api) && api.Status == http.StatusNotAcceptable {
			return fmt.Errorf("%w: %s", authsync.ErrRowNotFound, table)
		}
		return err
	}
	return nil
}

// Insert creates row and decodes the created representation into dest.
func (r *Rows) Insert(ctx context.Context, table string, row any, dest any) error {
	path := "/rest/v1/" + url.PathEscape(table)
	headers := map[string]string{
		"Accept": "application/vnd.pgrst.object+json",
		"Prefer": "return=representation",
	}
	return r.rest.doJSON(ctx, "POST", path, r.tokens.AccessToken(), headers, row, dest)
}

// Update patches the rows matching filter with partial and decodes the
// updated representation into dest.
func (r *Rows) Update(ctx context.Context, table string, filter map[string]string, partial any, dest any) error {
	path := "/rest/v1/" + url.PathEscape(table) + "?select=*" + filterQuery(filter)
	headers := map[string]string{
		"Accept": "application/vnd.pgrst.object+json",
		"Prefer": "return=representation",
	}

	err := r.rest.doJSON(ctx, "PATCH", path, r.tokens.AccessToken(), headers, partial, dest)
	if err != nil {
		var api *apiError
		if errors.As(err, &api) && api.Status == http.StatusNotAcceptable {
			return fmt.Errorf("%w: %s", authsync.ErrRowNotFound, table)
		}
		return err
	}
	return nil
}

// filterQuery renders filter as PostgREST eq. parameters in stable order.
func filterQuery(filter map[string]string) string {
	if len(filter) == 0 {
		return ""
	}
	columns := make([]string, 0, len(filter))
	for column := range filter {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	q := ""
	for _, column := range columns {
		q += "&" + url.QueryEscape(column) + "=eq." + url.QueryEscape(filter[column])
	}
	return q
}
