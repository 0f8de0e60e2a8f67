package interview

// #region script

// openingScript is the fixed opening: identity, travel mode, travel duration.
var openingScript = [...]string{
	"受験番号とお名前を教えてもらえますか？",
	"今日はここまで、どうやって来ましたか？",
	"家からここまで、どれくらい時間がかかりましたか？",
}

// activityIntro opens exploration once the opening script is complete.
const activityIntro = "それでは、あなたが取り組んできた活動について教えてもらえますか？"

// OpeningSteps is the number of scripted opening questions.
const OpeningSteps = len(openingScript)

// #endregion

// #region controller

// StageController derives ConversationState from history. It holds no
// per-session counters; every call recomputes from the turns it is given.
type StageController struct {
	cfg        Config
	classifier *AnswerClassifier
}

// NewStageController creates a controller. classifier decides which examinee
// answers count as valid; nil uses one built from cfg.
func NewStageController(cfg Config, classifier *AnswerClassifier) *StageController {
	cfg = cfg.withDefaults()
	if classifier == nil {
		classifier = NewAnswerClassifier(cfg)
	}
	return &StageController{cfg: cfg, classifier: classifier}
}

// Derive walks the full history and returns the state the next question is
// asked in. Flagged answers count toward the turn budget but do not advance
// opening steps or depth, so a redirect re-asks at the same position.
func (sc *StageController) Derive(history []Turn, pattern Pattern) ConversationState {
	var (
		stage    = StageOpening
		inStage  int
		total    int
		valid    int
		question string
	)

	for _, turn := range history {
		if turn.Role == RoleInterviewer {
			question = turn.Text
			continue
		}
		if turn.Role != RoleExaminee {
			continue
		}
		total++

		if stage == StageClosing {
			continue
		}

		if !guardedAssess(sc.classifier, question, turn.Text).Flagged() {
			valid++
			inStage++
			switch stage {
			case StageOpening:
				if inStage >= OpeningSteps {
					stage, inStage = StageExploration, 0
				}
			case StageExploration:
				if inStage >= sc.cfg.ExplorationTurns ||
					(inStage >= sc.cfg.MinExplorationTurns && hasDepthCue(pattern, turn.Text)) {
					stage, inStage = StageDeepening, 0
				}
			}
		}

		if total >= sc.cfg.TurnBudget {
			stage, inStage = StageClosing, 0
		}
	}

	return ConversationState{
		Stage:         stage,
		Depth:         inStage + 1,
		ExamineeTurns: total,
		ValidTurns:    valid,
	}
}

// MotivationAllowed reports whether the "why this school" topic may appear.
func (sc *StageController) MotivationAllowed(state ConversationState) bool {
	return motivationAllowed(state, sc.cfg)
}

func motivationAllowed(state ConversationState, cfg Config) bool {
	return state.Stage >= StageDeepening && state.ExamineeTurns >= cfg.MotivationMinTurns
}

// #endregion

// #region history-helpers

// lastExchange returns the most recent examinee answer and the interviewer
// question that preceded it. ok is false when the history does not end with
// an examinee turn.
func lastExchange(history []Turn) (question, answer string, ok bool) {
	if len(history) == 0 || history[len(history)-1].Role != RoleExaminee {
		return "", "", false
	}
	answer = history[len(history)-1].Text
	for i := len(history) - 2; i >= 0; i-- {
		if history[i].Role == RoleInterviewer {
			return history[i].Text, answer, true
		}
	}
	return "", answer, true
}

// lastQuestion returns the most recent interviewer turn.
func lastQuestion(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleInterviewer {
			return history[i].Text
		}
	}
	return ""
}

// askedBefore reports whether the interviewer already asked q verbatim.
func askedBefore(history []Turn, q string) bool {
	for _, t := range history {
		if t.Role == RoleInterviewer && t.Text == q {
			return true
		}
	}
	return false
}

// guardedAssess runs the classifier, treating a panic as "not flagged".
func guardedAssess(c *AnswerClassifier, question, answer string) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = verdictOK
		}
	}()
	return c.Assess(question, answer)
}

// #endregion
