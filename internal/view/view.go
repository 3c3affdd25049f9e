package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/models"
)

// Kind discriminates the rendered states.
type Kind int

const (
	KindAwaitingInput Kind = iota
	KindError
	KindResult
)

func (k Kind) String() string {
	switch k {
	case KindAwaitingInput:
		return "awaiting_input"
	case KindError:
		return "error"
	case KindResult:
		return "result"
	default:
		return "unknown"
	}
}

// LineStyle selects the typography of a rendered line.
type LineStyle int

const (
	StyleHeading LineStyle = iota
	StyleBody
	StyleDetail
	StyleSmall
	StyleAlert
)

// Line is one row of text in the frame image.
type Line struct {
	Text  string
	Style LineStyle
}

// Fixed copy.
const (
	MissingInputMessage   = "Please enter a valid Polygon address or ENS name."
	FailureMessage        = "Unable to fetch balance or price. Please try again."
	USDUnavailableMessage = "Unable to calculate USD value"
	InputPlaceholder      = "Enter address or ENS name"
	PromptMessage         = "Enter your Polygon address or ENS name"

	invalidAddressDetail = "Invalid address or ENS name"
	invalidInputDetail   = "Invalid input: Address or ENS name must be a non-empty string"
	unknownErrorDetail   = "An unknown error occurred"

	accentColor = "#FF8B19"
)

// State is everything needed to render one frame response. It lives for a
// single request.
type State struct {
	Kind  Kind
	Input string

	Heading string
	Message string
	Detail  string
	Note    string

	Address     string
	BalanceText string
	BalanceLine string
	USDLine     string
	NetworkLine string
	PriceUSD    float64
	PriceLine   string

	// InputPlaceholder is non-empty when the frame shows a text field.
	InputPlaceholder string
	Buttons          []models.Button

	BackgroundColor string
	BackgroundImage string
}

// Lines returns the image text rows in display order.
func (s State) Lines() []Line {
	var lines []Line
	add := func(text string, style LineStyle) {
		if text != "" {
			lines = append(lines, Line{Text: text, Style: style})
		}
	}

	add(s.Heading, StyleHeading)
	switch s.Kind {
	case KindResult:
		add(s.BalanceLine, StyleBody)
		add(s.USDLine, StyleBody)
		if s.Address != "" {
			add("Address: "+s.Address, StyleDetail)
		}
		add(s.NetworkLine, StyleDetail)
		add(s.PriceLine, StyleSmall)
	default:
		add(s.Message, StyleBody)
		add(s.Note, StyleAlert)
		add(s.Detail, StyleSmall)
	}
	return lines
}

// Builder creates States for one configured token.
type Builder struct {
	symbol        string
	network       string
	chainID       int64
	explorerURL   string
	backgroundURL string
}

// NewBuilder creates a Builder from the application config.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		symbol:        cfg.TokenSymbol,
		network:       cfg.NetworkName(),
		chainID:       cfg.ChainID,
		explorerURL:   cfg.ExplorerURL,
		backgroundURL: cfg.BackgroundURL,
	}
}

func backButton() models.Button {
	return models.Button{Label: "Back", Action: models.ActionPost, Target: "/"}
}

func checkButton(label, value string) models.Button {
	return models.Button{Label: label, Action: models.ActionPost, Target: "/check", Value: value}
}

// Title is the page title shared by every state.
func (b *Builder) Title() string {
	return fmt.Sprintf("$%s Token Tracker on %s", b.symbol, b.network)
}

// Initial is the AwaitingInput state. note, when set, is echoed under the prompt.
func (b *Builder) Initial(note string) State {
	return State{
		Kind:             KindAwaitingInput,
		Heading:          fmt.Sprintf("$%s Balance Checker", b.symbol),
		Message:          PromptMessage,
		Note:             note,
		InputPlaceholder: InputPlaceholder,
		Buttons:          []models.Button{checkButton("Check Balance", "")},
		BackgroundImage:  b.backgroundURL,
		BackgroundColor:  accentColor,
	}
}

// MissingInput is the Error state for a check without any input.
func (b *Builder) MissingInput() State {
	return State{
		Kind:            KindError,
		Heading:         "Error",
		Message:         MissingInputMessage,
		Buttons:         []models.Button{backButton()},
		BackgroundColor: accentColor,
	}
}

// Failure is the Error state for a check that could not complete. input is
// carried by the Retry button.
func (b *Builder) Failure(input string, err error) State {
	return State{
		Kind:            KindError,
		Input:           input,
		Heading:         "Error",
		Message:         FailureMessage,
		Detail:          "Error details: " + ErrorDetail(err),
		Buttons:         []models.Button{backButton(), checkButton("Retry", input)},
		BackgroundColor: accentColor,
	}
}

// Result is the Result state. balanceText is either a formatted balance or the
// fetcher's error marker.
func (b *Builder) Result(input, address, balanceText string, priceUSD float64) State {
	balanceLine, usdLine := b.BalanceLines(balanceText, priceUSD)

	return State{
		Kind:        KindResult,
		Input:       input,
		Heading:     fmt.Sprintf("Your $%s Balance", b.symbol),
		Address:     address,
		BalanceText: balanceText,
		BalanceLine: balanceLine,
		USDLine:     usdLine,
		NetworkLine: fmt.Sprintf("Network: %s (Chain ID: %d)", b.network, b.chainID),
		PriceUSD:    priceUSD,
		PriceLine:   "Price: " + FormatPrice(priceUSD) + " USD",
		Buttons: []models.Button{
			backButton(),
			{Label: explorerLabel(b.explorerURL), Action: models.ActionLink, Target: b.explorerURL},
			checkButton("Reset", input),
		},
		BackgroundColor: accentColor,
	}
}

// BalanceLines derives the balance and USD rows. A zero balance gets the
// "no tokens yet" message and no USD row; an error marker skips the USD product.
func (b *Builder) BalanceLines(balanceText string, priceUSD float64) (balanceLine, usdLine string) {
	if IsZeroBalance(balanceText) {
		return fmt.Sprintf("You don't have any $%s tokens on %s yet!", b.symbol, b.network), ""
	}

	if IsBalanceError(balanceText) {
		return balanceText, USDUnavailableMessage
	}

	balance, err := decimal.NewFromString(balanceText)
	if err != nil {
		return balanceText, USDUnavailableMessage
	}

	usd := balance.Mul(decimal.NewFromFloat(priceUSD))

	balanceLine = fmt.Sprintf("%s $%s on %s", formatGrouped(balance, config.BalanceDisplayPrecision, false), b.symbol, b.network)
	usdLine = fmt.Sprintf("(~$%s USD)", formatGrouped(usd, config.USDDisplayPrecision, true))
	return balanceLine, usdLine
}

// IsZeroBalance reports whether balanceText is the literal "0.00" or any
// numerically zero balance.
func IsZeroBalance(balanceText string) bool {
	if balanceText == config.ZeroBalanceText {
		return true
	}
	d, err := decimal.NewFromString(balanceText)
	return err == nil && d.IsZero()
}

// IsBalanceError reports whether balanceText is the fetcher's failure marker.
func IsBalanceError(balanceText string) bool {
	return strings.HasPrefix(balanceText, "Error")
}

// FormatPrice renders a USD price with fixed precision, e.g. "$0.00000123".
func FormatPrice(priceUSD float64) string {
	return "$" + strconv.FormatFloat(priceUSD, 'f', config.PricePrecision, 64)
}

// ErrorDetail maps a check failure to the message shown to the user.
// Malformed and unresolvable input collapse into one message.
func ErrorDetail(err error) string {
	switch {
	case err == nil:
		return unknownErrorDetail
	case errors.Is(err, config.ErrInvalidInput):
		return invalidInputDetail
	case errors.Is(err, config.ErrInvalidAddress):
		return invalidAddressDetail
	default:
		return err.Error()
	}
}

func explorerLabel(explorerURL string) string {
	if strings.Contains(explorerURL, "polygonscan.com") {
		return "Polygonscan"
	}
	return "Explorer"
}
