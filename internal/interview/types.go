package interview

// #region imports
import (
	"sort"
	"strings"
)

// #endregion

// #region role

// Role identifies who spoke a turn.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleExaminee    Role = "examinee"
)

// #endregion

// #region turn

// Turn is one recorded utterance. Turns are append-only and never edited.
type Turn struct {
	Role Role
	Text string
}

// #endregion

// #region stage

// Stage is the coarse phase of the interview. Stages only move forward.
type Stage int

const (
	StageOpening Stage = iota
	StageExploration
	StageDeepening
	StageClosing
)

var stageNames = [...]string{"opening", "exploration", "deepening", "closing"}

func (s Stage) String() string {
	if s < StageOpening || s > StageClosing {
		return "unknown"
	}
	return stageNames[s]
}

// #endregion

// #region pattern

// Pattern is the behavioral archetype of the examinee's described activity.
type Pattern string

const (
	PatternScientificInquiry Pattern = "individual_scientific_inquiry"
	PatternTeamPerformance   Pattern = "team_performance"
	PatternCompetitiveSport  Pattern = "competitive_sport"
	PatternLeadership        Pattern = "leadership"
	PatternCommunityService  Pattern = "community_service"
	PatternTechnicalCreation Pattern = "technical_creation"
	PatternGeneric           Pattern = "generic"
)

// AllPatterns lists every Pattern in classification priority order, generic last.
var AllPatterns = []Pattern{
	PatternCompetitiveSport,
	PatternTeamPerformance,
	PatternScientificInquiry,
	PatternTechnicalCreation,
	PatternLeadership,
	PatternCommunityService,
	PatternGeneric,
}

// #endregion

// #region tier

// Tier buckets depth into four focus levels.
type Tier int

const (
	TierFacts Tier = iota + 1
	TierObstacles
	TierCollaboration
	TierReflection
)

// TierFor buckets a depth: 1-2, 3-4, 5-6, 7+.
func TierFor(depth int) Tier {
	switch {
	case depth <= 2:
		return TierFacts
	case depth <= 4:
		return TierObstacles
	case depth <= 6:
		return TierCollaboration
	default:
		return TierReflection
	}
}

// #endregion

// #region activity-profile

// ActivityProfile is the examinee's self-described background activity. Read-only.
type ActivityProfile struct {
	Activity    string `json:"activity"`
	Role        string `json:"role,omitempty"`
	Challenge   string `json:"challenge,omitempty"`
	Learning    string `json:"learning,omitempty"`
	Achievement string `json:"achievement,omitempty"`
}

// Narrative joins all non-empty fields into one text for classification.
func (p ActivityProfile) Narrative() string {
	parts := make([]string, 0, 5)
	for _, s := range []string{p.Activity, p.Role, p.Challenge, p.Learning, p.Achievement} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// #endregion

// #region keyword-set

// KeywordSet is a sorted, duplicate-free set of continuity keywords.
// Always build one with NewKeywordSet so the invariant holds.
type KeywordSet []string

// NewKeywordSet deduplicates and sorts terms. Empty strings are dropped.
func NewKeywordSet(terms ...string) KeywordSet {
	seen := make(map[string]struct{}, len(terms))
	out := make(KeywordSet, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether term is in the set.
func (k KeywordSet) Contains(term string) bool {
	i := sort.SearchStrings(k, term)
	return i < len(k) && k[i] == term
}

// Union returns a new set holding the members of both.
func (k KeywordSet) Union(other KeywordSet) KeywordSet {
	all := make([]string, 0, len(k)+len(other))
	all = append(all, k...)
	all = append(all, other...)
	return NewKeywordSet(all...)
}

// #endregion

// #region conversation-state

// ConversationState is derived from history on every call and never stored.
type ConversationState struct {
	Stage         Stage
	Depth         int // 1-based position within the current stage
	ExamineeTurns int // every examinee turn, flagged or not
	ValidTurns    int // examinee turns that passed both quality checks
}

// Tier returns the depth tier for the current state.
func (s ConversationState) Tier() Tier {
	return TierFor(s.Depth)
}

// #endregion

// #region strategy-descriptor

// StrategyDescriptor is the pure-value output of the strategy table.
type StrategyDescriptor struct {
	Focus           string
	Shapes          []string // archetypal question forms for this focus
	Examples        []string // pattern-flavored example questions
	AllowMotivation bool
}

// #endregion

// #region flags

// Flags reports how the returned question was produced.
type Flags struct {
	Misaligned      bool `json:"misaligned"`
	Joking          bool `json:"joking"`
	ServedFromCache bool `json:"served_from_cache"`
}

// #endregion

// #region source

// Source names where the question text came from.
type Source string

const (
	SourceScript    Source = "script"
	SourceRedirect  Source = "redirect"
	SourceCache     Source = "cache"
	SourceSimilar   Source = "cache_similar"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
	SourceClosing   Source = "closing"
)

// #endregion

// #region request-result

// Request is the input to Engine.NextQuestion.
type Request struct {
	SessionID string // optional; keys the per-session pattern memo
	History   []Turn
	Profile   ActivityProfile
}

// Result is the engine's answer for one turn.
type Result struct {
	Question string
	Stage    Stage
	Depth    int
	Pattern  Pattern
	Keywords KeywordSet
	Flags    Flags
	Source   Source
	Closing  bool
}

// #endregion
