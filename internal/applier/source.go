package applier

import (
	"context"
	"net/url"
	"strconv"

	"hhapply/internal/hh"
	"hhapply/internal/queries"
)

// VacancySource fetches one page of a paginated vacancy listing.
type VacancySource interface {
	FetchPage(ctx context.Context, page int) (*hh.VacancyPage, error)
}

// SimilarSource lists vacancies similar to the configured resume.
type SimilarSource struct {
	Client   *hh.Client
	ResumeID string
}

func (s SimilarSource) FetchPage(ctx context.Context, page int) (*hh.VacancyPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return s.Client.SimilarVacancies(ctx, s.ResumeID, params)
}

// QuerySource lists vacancies matching a saved search query.
type QuerySource struct {
	Client *hh.Client
	Query  queries.Query
}

func (s QuerySource) FetchPage(ctx context.Context, page int) (*hh.VacancyPage, error) {
	return s.Client.SearchVacancies(ctx, s.Query.Values(page))
}
