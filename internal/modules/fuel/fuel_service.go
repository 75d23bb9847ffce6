package fuel

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tow-trip-planner/internal/apiclient"
	"tow-trip-planner/internal/logger"
	"tow-trip-planner/internal/models"
	"tow-trip-planner/internal/telemetry"
)

// Weekly U.S. retail price series on the EIA API.
const (
	GasSeries    = "PET.EMM_EPM0_PTE_NUS_DPG.W"
	DieselSeries = "PET.EMD_EPD2D_PTE_NUS_DPG.W"

	DefaultGasPrice    = 3.50
	DefaultDieselPrice = 4.00
	DefaultPriceTTL    = 6 * time.Hour
)

// DefaultPrice is the fallback price per gallon for fuelType.
func DefaultPrice(fuelType models.FuelType) float64 {
	if fuelType == models.FuelDiesel {
		return DefaultDieselPrice
	}
	return DefaultGasPrice
}

func seriesFor(fuelType models.FuelType) string {
	if fuelType == models.FuelDiesel {
		return DieselSeries
	}
	return GasSeries
}

type ServiceInterface interface {
	CurrentPrice(ctx context.Context, fuelType models.FuelType) models.FuelPriceQuote
}

type Options struct {
	APIKey   string
	BaseURL  string
	PriceTTL time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
}

type cachedQuote struct {
	quote     models.FuelPriceQuote
	fetchedAt time.Time
}

// service quotes fuel prices from the EIA statistics API. It never fails:
// any problem yields the default price tagged with PriceSourceDefault.
type service struct {
	client  *apiclient.Client
	apiKey  string
	baseURL string
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger

	mu     sync.Mutex
	quotes map[models.FuelType]cachedQuote
}

func NewService(client *apiclient.Client, opts Options) ServiceInterface {
	if opts.PriceTTL <= 0 {
		opts.PriceTTL = DefaultPriceTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		client:  client,
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		ttl:     opts.PriceTTL,
		now:     opts.Now,
		log:     logger.OrNop(opts.Logger),
		quotes:  make(map[models.FuelType]cachedQuote),
	}
}

func (s *service) CurrentPrice(ctx context.Context, fuelType models.FuelType) models.FuelPriceQuote {
	if q, ok := s.cached(fuelType); ok {
		telemetry.FuelQuote(string(fuelType), string(q.Source))
		return q
	}

	price, err := s.fetch(ctx, fuelType)
	if err != nil {
		s.log.Warn("fuel price unavailable, using default",
			zap.String("fuel_type", string(fuelType)),
			zap.String("kind", models.Kind(err)),
			zap.Error(err))
		q := models.FuelPriceQuote{FuelType: fuelType, PricePerGallon: DefaultPrice(fuelType), Source: models.PriceSourceDefault}
		telemetry.FuelQuote(string(fuelType), string(q.Source))
		return q
	}

	q := models.FuelPriceQuote{FuelType: fuelType, PricePerGallon: price, Source: models.PriceSourceProvider}
	s.mu.Lock()
	s.quotes[fuelType] = cachedQuote{quote: q, fetchedAt: s.now()}
	s.mu.Unlock()

	telemetry.FuelQuote(string(fuelType), string(q.Source))
	return q
}

func (s *service) cached(fuelType models.FuelType) (models.FuelPriceQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.quotes[fuelType]
	if !ok || s.now().Sub(c.fetchedAt) >= s.ttl {
		return models.FuelPriceQuote{}, false
	}
	return c.quote, true
}

type eiaResponse struct {
	Response struct {
		Data []struct {
			Period string          `json:"period"`
			Value  json.RawMessage `json:"value"`
		} `json:"data"`
	} `json:"response"`
	Error string `json:"error"`
}

func (s *service) fetch(ctx context.Context, fuelType models.FuelType) (float64, error) {
	if s.apiKey == "" {
		return 0, models.ErrMissingCredential
	}

	u := fmt.Sprintf("%s/seriesid/%s?api_key=%s", s.baseURL, seriesFor(fuelType), url.QueryEscape(s.apiKey))
	var body eiaResponse
	if err := s.client.GetJSON(ctx, "series", u, &body); err != nil {
		return 0, err
	}
	if body.Error != "" {
		return 0, &models.ProviderError{Provider: s.client.Provider(), Message: body.Error}
	}
	if len(body.Response.Data) == 0 {
		return 0, &models.ProviderError{Provider: s.client.Provider(), Message: "empty series"}
	}

	price, err := parsePrice(body.Response.Data[0].Value)
	if err != nil || price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, &models.ProviderError{Provider: s.client.Provider(), Message: fmt.Sprintf("unusable price %s", body.Response.Data[0].Value)}
	}
	return price, nil
}

// parsePrice accepts the value as a JSON number or a numeric string.
func parsePrice(raw json.RawMessage) (float64, error) {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return strconv.ParseFloat(text, 64)
}
