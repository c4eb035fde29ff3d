// Package gate is the default-deny authentication policy applied to every
// inbound request. Transports resolve the route and group of a request and
// hand over the raw authorization value; the gate decides whether the request
// is exempt, authenticated or rejected.
package gate

import (
	"fmt"
	"strings"

	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/server/auth"
)

// Outcome is the terminal state of a request passing through the gate.
type Outcome int

const (
	Unchecked Outcome = iota
	Exempt
	Authenticated
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Exempt:
		return "exempt"
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "unchecked"
	}
}

// Verifier turns a bearer token into session claims.
type Verifier interface {
	Verify(token string) (auth.SessionClaims, error)
}

// Recorder observes gate decisions. It may be nil.
type Recorder interface {
	RecordGateDecision(outcome string)
}

// Decision is the result of Admit. Claims is set only when Outcome is Authenticated.
type Decision struct {
	Outcome Outcome
	Claims  auth.SessionClaims
}

type Gate struct {
	visibility *Visibility
	verifier   Verifier
	recorder   Recorder
}

func New(visibility *Visibility, verifier Verifier, recorder Recorder) *Gate {
	return &Gate{visibility: visibility, verifier: verifier, recorder: recorder}
}

// Visibility exposes the exemption table so transports can mark routes.
func (g *Gate) Visibility() *Visibility {
	return g.visibility
}

// Admit runs the full state machine for a request to route inside group.
// Exempt routes never look at the header.
func (g *Gate) Admit(route, group, header string) (Decision, error) {
	if g.visibility.IsPublic(route, group) {
		g.record(Exempt)
		return Decision{Outcome: Exempt}, nil
	}

	claims, err := g.Authenticate(header)
	if err != nil {
		return Decision{Outcome: Rejected}, err
	}

	return Decision{Outcome: Authenticated, Claims: claims}, nil
}

// Authenticate checks the authorization value of a protected request.
// The returned error is one of common.ErrMissingCredentials,
// common.ErrMalformedCredentials or common.ErrInvalidToken; token failures are
// not told apart.
func (g *Gate) Authenticate(header string) (auth.SessionClaims, error) {
	token, err := ParseBearer(header)
	if err != nil {
		g.record(Rejected)
		return auth.SessionClaims{}, err
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		g.record(Rejected)
		return auth.SessionClaims{}, common.ErrInvalidToken
	}

	g.record(Authenticated)
	return claims, nil
}

// MarkExempt records an exempt request for routes that skip Admit entirely.
func (g *Gate) MarkExempt() {
	g.record(Exempt)
}

func (g *Gate) record(o Outcome) {
	if g.recorder != nil {
		g.recorder.RecordGateDecision(o.String())
	}
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>" value.
// The scheme is case-insensitive; exactly one non-empty token must follow.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", common.ErrMissingCredentials
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrMalformedCredentials
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", common.ErrMalformedCredentials
	}

	return token, nil
}

// RouteKey builds the lookup key used for a route inside the visibility table.
func RouteKey(method, path string) string {
	return fmt.Sprintf("%s %s", method, path)
}
