package api

import (
	"encoding/base64"
	"encoding/json"
	"html"
	"math/big"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Fantasim/sazonframe/internal/api/handlers"
	"github.com/Fantasim/sazonframe/internal/chain/chaintest"
	"github.com/Fantasim/sazonframe/internal/checker"
	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/ens"
	"github.com/Fantasim/sazonframe/internal/frame"
	"github.com/Fantasim/sazonframe/internal/models"
	"github.com/Fantasim/sazonframe/internal/price"
	"github.com/Fantasim/sazonframe/internal/resolver"
	"github.com/Fantasim/sazonframe/internal/token"
	"github.com/Fantasim/sazonframe/internal/view"
)

const vitalik = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

var imageRe = regexp.MustCompile(`<meta property="fc:frame:image" content="data:image/svg\+xml;base64,([^"]+)">`)

// setupRouter wires the full stack against in-memory chains and a local
// market-data server.
func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		PublicURL:    "https://frames.example.com",
		ChainID:      config.PolygonChainID,
		TokenAddress: "0xf4EE4b895803b55F35802114Ce882231f26ac36D",
		TokenSymbol:  "SAZON",
		ExplorerURL:  "https://polygonscan.com/token/0xf4ee4b895803b55f35802114ce882231f26ac36d",
	}
	contract := common.HexToAddress(cfg.TokenAddress)
	registry := common.HexToAddress(config.ENSRegistryAddress)
	publicResolver := common.HexToAddress("0x231b0Ee14048e9dCcD1d247744d114a4EB5E8E63")

	mainnet := chaintest.NewCaller()
	mainnet.Respond(t, registry, ens.RegistryABI.Methods["resolver"], publicResolver)
	mainnet.Respond(t, publicResolver, ens.ResolverABI.Methods["addr"], common.HexToAddress(vitalik))

	raw, _ := new(big.Int).SetString("250000000000000000000", 10)
	polygon := chaintest.NewCaller()
	polygon.Respond(t, contract, token.ERC20ABI.Methods["balanceOf"], raw)
	polygon.Respond(t, contract, token.ERC20ABI.Methods["decimals"], uint8(18))

	market := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pair":{"priceUsd":"0.00000123"}}`))
	}))
	t.Cleanup(market.Close)

	renderer, err := frame.NewRenderer(cfg.PublicURL)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	c := checker.New(
		resolver.New(ens.NewClient(mainnet, registry)),
		token.NewFetcher(polygon, contract, cfg.TokenSymbol),
		price.NewPriceService(market.URL),
		view.NewBuilder(cfg),
	)

	return NewRouter(cfg, &handlers.FrameDeps{Checker: c, Renderer: renderer}, nil)
}

func frameImage(t *testing.T, body string) string {
	t.Helper()
	m := imageRe.FindStringSubmatch(html.UnescapeString(body))
	if m == nil {
		t.Fatal("response has no fc:frame:image data URI")
	}
	svg, err := base64.StdEncoding.DecodeString(m[1])
	if err != nil {
		t.Fatalf("decode image: %v", err)
	}
	return html.UnescapeString(string(svg))
}

func TestRouter_CheckVitalik(t *testing.T) {
	router := setupRouter(t)

	body := `{"untrustedData":{"fid":3,"buttonIndex":1,"inputText":"vitalik.eth"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	svg := frameImage(t, rec.Body.String())
	for _, want := range []string{
		"Your $SAZON Balance",
		"250 $SAZON on Polygon",
		"(~$0.00 USD)",
		"Address: " + vitalik,
		"Price: $0.00000123 USD",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("result image missing %q", want)
		}
	}
}

func TestRouter_CheckEmptyInput(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(`{"untrustedData":{"fid":3,"buttonIndex":1}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	svg := frameImage(t, rec.Body.String())
	if !strings.Contains(svg, "Please enter a valid Polygon address or ENS name.") {
		t.Error("missing-input image should prompt for an address")
	}
}

func TestRouter_CheckInvalidAddress(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/check?value=not-an-address", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	svg := frameImage(t, rec.Body.String())
	if !strings.Contains(svg, "Error details: Invalid address or ENS name") {
		t.Error("invalid input should render the collapsed address error")
	}
	if !strings.Contains(html.UnescapeString(rec.Body.String()), `content="Retry"`) {
		t.Error("failure frame should offer Retry")
	}
}

func TestRouter_InitialBothMethods(t *testing.T) {
	router := setupRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if !strings.Contains(frameImage(t, rec.Body.String()), "$SAZON Balance Checker") {
				t.Error("initial image missing heading")
			}
		})
	}
}

func TestRouter_Health(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != Version {
		t.Errorf("expected version %q, got %q", Version, resp.Version)
	}
}

func TestRouter_BodyTooLarge(t *testing.T) {
	router := setupRouter(t)

	payload := strings.Repeat("x", config.MaxRequestBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
