package services

import (
	"cinestream/config"
	"cinestream/internal/constants"
	"cinestream/internal/database"
	"cinestream/internal/metrics"
	"cinestream/internal/models"
	"cinestream/internal/types"
	"cinestream/internal/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"github.com/valkey-io/valkey-go"
	"gorm.io/datatypes"
)

const (
	youtubeWatchURL   = "https://www.youtube.com/watch?v="
	defaultTMDBPage   = 1
	maxTMDBSearchPage = 500
)

type SearchKind string

const (
	SearchMovie SearchKind = "movie"
	SearchTV    SearchKind = "tv"
	SearchMulti SearchKind = "multi"
)

func (k SearchKind) Valid() bool {
	return k == SearchMovie || k == SearchTV || k == SearchMulti
}

type TMDBSearchResponse struct {
	Page         int                `json:"page"`
	Results      []TMDBSearchResult `json:"results"`
	TotalPages   int                `json:"total_pages"`
	TotalResults int                `json:"total_results"`
}

type TMDBSearchResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	MediaType        string  `json:"media_type,omitempty"`
	OriginalLanguage string  `json:"original_language"`
	Adult            bool    `json:"adult,omitempty"`
}

type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TMDBCompany struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TMDBCountry struct {
	ISO31661 string `json:"iso_3166_1"`
	Name     string `json:"name"`
}

type TMDBVideo struct {
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type TMDBVideos struct {
	Results []TMDBVideo `json:"results"`
}

type TMDBMovieDetails struct {
	ID                  int           `json:"id"`
	Title               string        `json:"title"`
	Overview            string        `json:"overview"`
	ReleaseDate         string        `json:"release_date"`
	Runtime             int           `json:"runtime"`
	Status              string        `json:"status"`
	Adult               bool          `json:"adult"`
	VoteAverage         float64       `json:"vote_average"`
	VoteCount           int           `json:"vote_count"`
	OriginalLanguage    string        `json:"original_language"`
	Genres              []TMDBGenre   `json:"genres"`
	PosterPath          string        `json:"poster_path"`
	BackdropPath        string        `json:"backdrop_path"`
	ProductionCompanies []TMDBCompany `json:"production_companies"`
	ProductionCountries []TMDBCountry `json:"production_countries"`
	Videos              TMDBVideos    `json:"videos"`
}

type TMDBShowDetails struct {
	ID                  int           `json:"id"`
	Name                string        `json:"name"`
	Overview            string        `json:"overview"`
	FirstAirDate        string        `json:"first_air_date"`
	LastAirDate         string        `json:"last_air_date"`
	Status              string        `json:"status"`
	Adult               bool          `json:"adult"`
	NumberOfSeasons     int           `json:"number_of_seasons"`
	NumberOfEpisodes    int           `json:"number_of_episodes"`
	VoteAverage         float64       `json:"vote_average"`
	VoteCount           int           `json:"vote_count"`
	OriginalLanguage    string        `json:"original_language"`
	Genres              []TMDBGenre   `json:"genres"`
	PosterPath          string        `json:"poster_path"`
	BackdropPath        string        `json:"backdrop_path"`
	ProductionCompanies []TMDBCompany `json:"production_companies"`
	ProductionCountries []TMDBCountry `json:"production_countries"`
	Videos              TMDBVideos    `json:"videos"`
}

type TMDBSeasonDetails struct {
	ID           int                  `json:"id"`
	Name         string               `json:"name"`
	Overview     string               `json:"overview"`
	SeasonNumber int                  `json:"season_number"`
	AirDate      string               `json:"air_date"`
	Episodes     []TMDBEpisodeDetails `json:"episodes"`
}

type TMDBEpisodeDetails struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	Runtime       int    `json:"runtime"`
	StillPath     string `json:"still_path"`
}

// MediaAttributes is the provider payload mapped onto the Media shape.
type MediaAttributes struct {
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	Year                *int             `json:"year"`
	Duration            *int             `json:"duration,omitempty"`
	Type                models.MediaType `json:"type"`
	PosterURL           string           `json:"posterUrl"`
	BackdropURL         string           `json:"backdropUrl"`
	TrailerURL          string           `json:"trailerUrl"`
	Rating              decimal.Decimal  `json:"rating"`
	ExternalID          string           `json:"externalId"`
	FirstAirDate        *time.Time       `json:"firstAirDate,omitempty"`
	LastAirDate         *time.Time       `json:"lastAirDate,omitempty"`
	Status              *string          `json:"status,omitempty"`
	SeasonsCount        *int             `json:"seasonsCount,omitempty"`
	EpisodesCount       *int             `json:"episodesCount,omitempty"`
	VoteAverage         float64          `json:"voteAverage"`
	VoteCount           int              `json:"voteCount"`
	OriginalLanguage    string           `json:"originalLanguage"`
	ProductionCompanies []string         `json:"productionCompanies"`
	ProductionCountries []string         `json:"productionCountries"`
	Adult               bool             `json:"adult"`
	GenreNames          []string         `json:"genreNames"`
}

// Hash fingerprints the attributes so unchanged provider payloads can be skipped.
func (a MediaAttributes) Hash() string {
	return utils.HashFields(map[string]any{
		"title":               a.Title,
		"description":         a.Description,
		"year":                a.Year,
		"duration":            a.Duration,
		"type":                string(a.Type),
		"posterUrl":           a.PosterURL,
		"backdropUrl":         a.BackdropURL,
		"trailerUrl":          a.TrailerURL,
		"rating":              a.Rating.String(),
		"firstAirDate":        formatDate(a.FirstAirDate),
		"lastAirDate":         formatDate(a.LastAirDate),
		"status":              a.Status,
		"seasonsCount":        a.SeasonsCount,
		"episodesCount":       a.EpisodesCount,
		"voteAverage":         a.VoteAverage,
		"voteCount":           a.VoteCount,
		"originalLanguage":    a.OriginalLanguage,
		"productionCompanies": strings.Join(a.ProductionCompanies, "|"),
		"productionCountries": strings.Join(a.ProductionCountries, "|"),
		"adult":               a.Adult,
		"genres":              strings.Join(a.GenreNames, "|"),
	})
}

// Apply overwrites the provider-owned fields of media and records the hash.
func (a MediaAttributes) Apply(media *models.Media) {
	externalID := a.ExternalID

	media.Title = a.Title
	media.Description = a.Description
	media.Year = a.Year
	media.Duration = a.Duration
	media.Type = a.Type
	media.PosterURL = a.PosterURL
	media.BackdropURL = a.BackdropURL
	media.TrailerURL = a.TrailerURL
	media.Rating = a.Rating
	media.ExternalID = &externalID
	media.FirstAirDate = a.FirstAirDate
	media.LastAirDate = a.LastAirDate
	media.Status = a.Status
	media.SeasonsCount = a.SeasonsCount
	media.EpisodesCount = a.EpisodesCount
	media.VoteAverage = a.VoteAverage
	media.VoteCount = a.VoteCount
	media.OriginalLanguage = a.OriginalLanguage
	media.ProductionCompanies = datatypes.JSONSlice[string](a.ProductionCompanies)
	media.ProductionCountries = datatypes.JSONSlice[string](a.ProductionCountries)
	media.Adult = a.Adult
	media.MetadataHash = a.Hash()
	media.Normalize()
}

// ApplyVolatile copies only the provider fields that drift after import and
// records the hash. Curated fields such as the title or genres are kept.
func (a MediaAttributes) ApplyVolatile(media *models.Media) {
	media.VoteAverage = a.VoteAverage
	media.VoteCount = a.VoteCount
	media.Status = a.Status
	media.LastAirDate = a.LastAirDate
	media.SeasonsCount = a.SeasonsCount
	media.EpisodesCount = a.EpisodesCount
	media.MetadataHash = a.Hash()
	media.Normalize()
}

type TMDBService struct {
	client       *http.Client
	apiKey       string
	baseURL      string
	imageBaseURL string
	cache        valkey.Client
	cacheTTL     time.Duration
	log          logger.Logger
}

func NewTMDBService(cfg config.Config, cache valkey.Client) *TMDBService {
	return &TMDBService{
		client: &http.Client{
			Timeout: cfg.TMDBTimeout(),
		},
		apiKey:       cfg.TMDBAPIKey,
		baseURL:      strings.TrimRight(cfg.TMDBBaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.TMDBImageBaseURL, "/"),
		cache:        cache,
		cacheTTL:     cfg.TMDBCacheTTL(),
		log:          logger.New("TMDBService"),
	}
}

func (s *TMDBService) Search(
	ctx context.Context,
	query string,
	kind SearchKind,
	page int,
) (*TMDBSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.NewValidationError("query", "is required")
	}
	if !kind.Valid() {
		return nil, types.NewValidationError("type", "must be one of movie, tv, multi")
	}
	if page < defaultTMDBPage {
		page = defaultTMDBPage
	}
	if page > maxTMDBSearchPage {
		page = maxTMDBSearchPage
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	var response TMDBSearchResponse
	if err := s.get(ctx, "search/"+string(kind), "/search/"+string(kind), params, &response); err != nil {
		return nil, err
	}

	if response.Results == nil {
		response.Results = []TMDBSearchResult{}
	}
	return &response, nil
}

func (s *TMDBService) FetchMovie(ctx context.Context, externalID string) (*TMDBMovieDetails, error) {
	id, err := parseExternalID(externalID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("append_to_response", "videos")

	var movie TMDBMovieDetails
	if err := s.get(ctx, "movie", "/movie/"+id, params, &movie); err != nil {
		return nil, err
	}
	if movie.ID == 0 {
		return nil, fmt.Errorf("%w: movie %s returned an empty payload", types.ErrProviderNotFound, id)
	}
	return &movie, nil
}

func (s *TMDBService) FetchShow(ctx context.Context, externalID string) (*TMDBShowDetails, error) {
	id, err := parseExternalID(externalID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("append_to_response", "videos")

	var show TMDBShowDetails
	if err := s.get(ctx, "tv", "/tv/"+id, params, &show); err != nil {
		return nil, err
	}
	if show.ID == 0 {
		return nil, fmt.Errorf("%w: tv show %s returned an empty payload", types.ErrProviderNotFound, id)
	}
	return &show, nil
}

func (s *TMDBService) FetchSeason(
	ctx context.Context,
	externalID string,
	season int,
) (*TMDBSeasonDetails, error) {
	id, err := parseExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if season < 1 {
		return nil, types.NewValidationError("season", "must be at least 1")
	}

	var details TMDBSeasonDetails
	path := fmt.Sprintf("/tv/%s/season/%d", id, season)
	if err := s.get(ctx, "season", path, url.Values{}, &details); err != nil {
		return nil, err
	}
	if len(details.Episodes) == 0 {
		return nil, fmt.Errorf(
			"%w: tv show %s season %d has no episodes",
			types.ErrProviderNotFound,
			id,
			season,
		)
	}
	return &details, nil
}

// FetchAttributes fetches the detail for kind and maps it.
func (s *TMDBService) FetchAttributes(
	ctx context.Context,
	externalID string,
	kind models.MediaType,
) (MediaAttributes, error) {
	switch kind {
	case models.MediaTypeMovie:
		movie, err := s.FetchMovie(ctx, externalID)
		if err != nil {
			return MediaAttributes{}, err
		}
		return s.MapMovie(movie), nil
	case models.MediaTypeTV:
		show, err := s.FetchShow(ctx, externalID)
		if err != nil {
			return MediaAttributes{}, err
		}
		return s.MapShow(show), nil
	default:
		return MediaAttributes{}, types.NewValidationError("type", "must be one of movie, tv")
	}
}

func (s *TMDBService) MapMovie(movie *TMDBMovieDetails) MediaAttributes {
	attributes := MediaAttributes{
		Title:               movie.Title,
		Description:         movie.Overview,
		Year:                utils.YearFromDate(movie.ReleaseDate),
		Type:                models.MediaTypeMovie,
		PosterURL:           s.ImageURL(movie.PosterPath),
		BackdropURL:         s.ImageURL(movie.BackdropPath),
		TrailerURL:          trailerURL(movie.Videos),
		Rating:              providerRating(movie.VoteAverage),
		ExternalID:          strconv.Itoa(movie.ID),
		VoteAverage:         movie.VoteAverage,
		VoteCount:           movie.VoteCount,
		OriginalLanguage:    movie.OriginalLanguage,
		ProductionCompanies: companyNames(movie.ProductionCompanies),
		ProductionCountries: countryNames(movie.ProductionCountries),
		Adult:               movie.Adult,
		GenreNames:          genreNames(movie.Genres),
	}

	if movie.Runtime > 0 {
		runtime := movie.Runtime
		attributes.Duration = &runtime
	}

	return attributes
}

func (s *TMDBService) MapShow(show *TMDBShowDetails) MediaAttributes {
	seasons := show.NumberOfSeasons
	episodes := show.NumberOfEpisodes

	attributes := MediaAttributes{
		Title:               show.Name,
		Description:         show.Overview,
		Year:                utils.YearFromDate(show.FirstAirDate),
		Type:                models.MediaTypeTV,
		PosterURL:           s.ImageURL(show.PosterPath),
		BackdropURL:         s.ImageURL(show.BackdropPath),
		TrailerURL:          trailerURL(show.Videos),
		Rating:              providerRating(show.VoteAverage),
		ExternalID:          strconv.Itoa(show.ID),
		FirstAirDate:        utils.ParseDate(show.FirstAirDate),
		LastAirDate:         utils.ParseDate(show.LastAirDate),
		SeasonsCount:        &seasons,
		EpisodesCount:       &episodes,
		VoteAverage:         show.VoteAverage,
		VoteCount:           show.VoteCount,
		OriginalLanguage:    show.OriginalLanguage,
		ProductionCompanies: companyNames(show.ProductionCompanies),
		ProductionCountries: countryNames(show.ProductionCountries),
		Adult:               show.Adult,
		GenreNames:          genreNames(show.Genres),
	}

	if status := strings.TrimSpace(show.Status); status != "" {
		attributes.Status = &status
	}

	return attributes
}

// MapSeason maps provider episodes onto Episode rows owned by mediaID.
func (s *TMDBService) MapSeason(mediaID uint, season *TMDBSeasonDetails) []models.Episode {
	episodes := make([]models.Episode, 0, len(season.Episodes))
	for _, item := range season.Episodes {
		if item.EpisodeNumber < 1 {
			continue
		}

		seasonNumber := item.SeasonNumber
		if seasonNumber < 1 {
			seasonNumber = season.SeasonNumber
		}

		episodes = append(episodes, models.Episode{
			MediaID:       mediaID,
			Season:        seasonNumber,
			EpisodeNumber: item.EpisodeNumber,
			Title:         item.Name,
			Description:   item.Overview,
			Duration:      max(item.Runtime, 0),
			StillURL:      s.ImageURL(item.StillPath),
			AirDate:       utils.ParseDate(item.AirDate),
		})
	}
	return episodes
}

func (s *TMDBService) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.imageBaseURL + path
}

// get performs a cached GET against the provider. Every failure is returned as
// ErrProviderNotFound or ErrProviderUnavailable.
func (s *TMDBService) get(
	ctx context.Context,
	endpoint string,
	path string,
	params url.Values,
	dst any,
) error {
	log := s.log.Function("get").TraceFromContext(ctx)

	if s.apiKey == "" {
		metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeUnavailable).Inc()
		return fmt.Errorf("%w: api key is not configured", types.ErrProviderUnavailable)
	}

	cacheKey := path + "?" + params.Encode()
	if s.readCache(ctx, cacheKey, dst) {
		metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeCached).Inc()
		return nil
	}

	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeUnavailable).Inc()
		return fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Cinestream/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeUnavailable).Inc()
		log.Warn("Provider request failed", "path", path, "error", err)
		return fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeNotFound).Inc()
		return fmt.Errorf("%w: %s", types.ErrProviderNotFound, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeUnavailable).Inc()
		log.Warn("Provider returned non-success status", "path", path, "statusCode", resp.StatusCode)
		return fmt.Errorf("%w: status %d", types.ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeUnavailable).Inc()
		log.Warn("Failed to decode provider response", "path", path, "error", err)
		return fmt.Errorf("%w: undecodable response: %v", types.ErrProviderUnavailable, err)
	}

	metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	s.writeCache(ctx, cacheKey, dst)
	return nil
}

func (s *TMDBService) readCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	found, err := database.NewCacheBuilder(s.cache, key).
		WithHash(constants.ProviderCacheHash).
		WithContext(ctx).
		Get(dst)
	if err != nil {
		s.log.Function("readCache").Warn("Failed to read provider cache", "key", key, "error", err)
		return false
	}
	return found
}

func (s *TMDBService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	err := database.NewCacheBuilder(s.cache, key).
		WithHash(constants.ProviderCacheHash).
		WithContext(ctx).
		WithStruct(value).
		WithTTL(s.cacheTTL).
		Set()
	if err != nil {
		s.log.Function("writeCache").Warn("Failed to write provider cache", "key", key, "error", err)
	}
}

// parseExternalID accepts only positive numeric provider ids.
func parseExternalID(externalID string) (string, error) {
	externalID = strings.TrimSpace(externalID)
	id, err := strconv.ParseUint(externalID, 10, 64)
	if err != nil || id == 0 {
		return "", types.NewValidationError("externalId", "must be a positive number")
	}
	return strconv.FormatUint(id, 10), nil
}

func providerRating(voteAverage float64) decimal.Decimal {
	rating := decimal.NewFromFloat(voteAverage).Round(1)
	if rating.LessThan(models.MinRating) {
		return models.MinRating
	}
	if rating.GreaterThan(models.MaxRating) {
		return models.MaxRating
	}
	return rating
}

func trailerURL(videos TMDBVideos) string {
	var fallback string
	for _, video := range videos.Results {
		if video.Site != "YouTube" || video.Key == "" || video.Type != "Trailer" {
			continue
		}
		if video.Official {
			return youtubeWatchURL + video.Key
		}
		if fallback == "" {
			fallback = youtubeWatchURL + video.Key
		}
	}
	return fallback
}

func genreNames(genres []TMDBGenre) []string {
	names := make([]string, 0, len(genres))
	for _, genre := range genres {
		if name := strings.TrimSpace(genre.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func companyNames(companies []TMDBCompany) []string {
	names := make([]string, 0, len(companies))
	for _, company := range companies {
		if name := strings.TrimSpace(company.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func countryNames(countries []TMDBCountry) []string {
	names := make([]string, 0, len(countries))
	for _, country := range countries {
		if name := strings.TrimSpace(country.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(utils.ProviderDateLayout)
}

// IsProviderError reports whether err is one of the provider failure kinds.
func IsProviderError(err error) bool {
	return errors.Is(err, types.ErrProviderNotFound) || errors.Is(err, types.ErrProviderUnavailable)
}
