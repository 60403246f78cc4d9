package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"hotspotportal/model"
	"hotspotportal/utils"
)

// AnchorPrefix marks the anchor token inside a "Display Name - NIP:<token>"
// comment.
const AnchorPrefix = "NIP:"

var (
	ErrIdentityNotFound = errors.New("hotspot identity not found")
	ErrIdentityExists   = errors.New("hotspot identity already exists")
	ErrUnknownMode      = errors.New("unknown verification mode")
)

const (
	VerifyExisting = "existing"
	VerifyNew      = "new"
)

// IdentitySource lists hotspot identities, optionally restricted to an
// exact comment.
type IdentitySource interface {
	ListIdentities(ctx context.Context, comment string) ([]model.HotspotIdentity, error)
}

type IdentityResolver struct {
	source IdentitySource
}

func NewIdentityResolver(source IdentitySource) *IdentityResolver {
	return &IdentityResolver{source: source}
}

// Resolve finds the hotspot identity of an anchor token. An exact comment
// match is tried first; only when it finds nothing is the full listing
// scanned for the embedded "NIP:<token>" form. Router errors are returned
// unchanged and nothing is retried here.
func (r *IdentityResolver) Resolve(ctx context.Context, anchorToken string) (*model.HotspotIdentity, error) {
	if anchorToken == "" {
		return nil, ErrIdentityNotFound
	}

	exact, err := r.source.ListIdentities(ctx, anchorToken)
	if err != nil {
		return nil, err
	}
	if len(exact) > 0 {
		if len(exact) > 1 {
			logAmbiguous(anchorToken, exact)
		}
		identity := exact[0]
		return &identity, nil
	}

	all, err := r.source.ListIdentities(ctx, "")
	if err != nil {
		return nil, err
	}

	var matches []model.HotspotIdentity
	for _, identity := range all {
		if MatchesAnchor(identity.Comment, anchorToken) {
			matches = append(matches, identity)
		}
	}
	if len(matches) == 0 {
		return nil, ErrIdentityNotFound
	}
	if len(matches) > 1 {
		logAmbiguous(anchorToken, matches)
	}

	// First in router listing order wins. There is no better tie-break
	// available without a backfill of the comments.
	identity := matches[0]
	return &identity, nil
}

// MatchesAnchor reports whether a hotspot comment refers to anchorToken,
// either as the whole legacy comment or in the embedded form.
func MatchesAnchor(comment, anchorToken string) bool {
	if anchorToken == "" {
		return false
	}
	embedded := AnchorPrefix + anchorToken
	return comment == anchorToken ||
		strings.Contains(comment, embedded) ||
		strings.HasSuffix(comment, "- "+embedded)
}

// AnchorFromComment extracts the anchor token a comment refers to: the text
// after the last "NIP:" up to the first character that cannot be part of a
// token, or the whole trimmed comment for the legacy format.
func AnchorFromComment(comment string) string {
	comment = strings.TrimSpace(comment)
	idx := strings.LastIndex(comment, AnchorPrefix)
	if idx < 0 {
		return comment
	}
	token := comment[idx+len(AnchorPrefix):]
	if end := strings.IndexFunc(token, func(r rune) bool { return !utils.IsAnchorRune(r) }); end >= 0 {
		token = token[:end]
	}
	return token
}

// CheckVerifyMode applies the account creation rule: a "new" account must
// not have a hotspot identity yet, an "existing" one must.
func CheckVerifyMode(mode string, identity *model.HotspotIdentity) error {
	switch mode {
	case VerifyNew:
		if identity != nil {
			return ErrIdentityExists
		}
		return nil
	case VerifyExisting:
		if identity == nil {
			return ErrIdentityNotFound
		}
		return nil
	default:
		return ErrUnknownMode
	}
}

func logAmbiguous(anchorToken string, matches []model.HotspotIdentity) {
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Username)
	}
	log.Printf("Anchor token %s matches %d hotspot identities (%s), using %s",
		anchorToken, len(matches), strings.Join(names, ", "), matches[0].Username)
}
