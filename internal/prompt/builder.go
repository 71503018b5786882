package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"text/template"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
)

type Kind int

const (
	Recommend Kind = iota
	Query
	Chat
)

func (k Kind) String() string {
	switch k {
	case Recommend:
		return "recommend"
	case Query:
		return "query"
	case Chat:
		return "chat"
	default:
		return "unknown"
	}
}

const noPreferences = "No specific preferences"

// Input carries every field a template may reference. Fields a kind does not use
// are ignored.
type Input struct {
	Products []domain.Product
	Identity *domain.Identity
	// Caller stands in for Identity in the user info when Identity is nil.
	Caller         *domain.Identity
	Preferences    string
	BudgetMax      *float64
	PreviousOrders []string
	Query          string
	QueryContext   map[string]any
	Message        string
	History        []domain.ChatTurn
}

// RecommendInput maps a recommendation context onto template input.
func RecommendInput(rc domain.RecommendationContext) Input {
	return Input{
		Products:       rc.Products,
		Identity:       rc.Identity,
		Caller:         callerOrNil(rc.Caller),
		Preferences:    rc.UserPreferences,
		BudgetMax:      rc.BudgetMax,
		PreviousOrders: rc.PreviousOrderIDs,
	}
}

func callerOrNil(id domain.Identity) *domain.Identity {
	if id.Subject == "" {
		return nil
	}
	return &id
}

type view struct {
	Products       string
	UserInfo       string
	Preferences    string
	Budget         string
	PreviousOrders string
	Query          string
	QueryContext   string
	Message        string
	History        string
}

// Builder renders prompts. It holds no mutable state and is safe for concurrent use.
type Builder struct {
	templates map[Kind]*template.Template
}

func NewBuilder() *Builder {
	return &Builder{
		templates: map[Kind]*template.Template{
			Recommend: template.Must(template.New("recommend").Parse(recommendTemplate)),
			Query:     template.Must(template.New("query").Parse(queryTemplate)),
			Chat:      template.Must(template.New("chat").Parse(chatTemplate)),
		},
	}
}

// Build renders the template for kind. Identical inputs yield byte-identical output.
func (b *Builder) Build(kind Kind, in Input) (string, error) {
	tmpl, ok := b.templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown prompt kind %d", kind)
	}

	v, err := render(in)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", kind, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("execute %s prompt: %w", kind, err)
	}
	return buf.String(), nil
}

func render(in Input) (view, error) {
	products := in.Products
	if products == nil {
		products = []domain.Product{}
	}
	orders := in.PreviousOrders
	if orders == nil {
		orders = []string{}
	}
	history := in.History
	if history == nil {
		history = []domain.ChatTurn{}
	}
	var user any = map[string]string{}
	switch {
	case in.Identity != nil:
		user = in.Identity
	case in.Caller != nil:
		user = in.Caller
	}
	queryCtx := in.QueryContext
	if queryCtx == nil {
		queryCtx = map[string]any{}
	}

	v := view{
		Preferences: in.Preferences,
		Budget:      "No budget limit",
		Query:       in.Query,
		Message:     in.Message,
	}
	if v.Preferences == "" {
		v.Preferences = noPreferences
	}
	if in.BudgetMax != nil {
		v.Budget = strconv.FormatFloat(*in.BudgetMax, 'f', -1, 64)
	}

	var err error
	if v.Products, err = indentJSON(products); err != nil {
		return view{}, err
	}
	if v.UserInfo, err = indentJSON(user); err != nil {
		return view{}, err
	}
	if v.PreviousOrders, err = indentJSON(orders); err != nil {
		return view{}, err
	}
	if v.QueryContext, err = indentJSON(queryCtx); err != nil {
		return view{}, err
	}
	if v.History, err = indentJSON(history); err != nil {
		return view{}, err
	}
	return v, nil
}

// indentJSON relies on encoding/json emitting struct fields in declaration order
// and map keys sorted.
func indentJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
