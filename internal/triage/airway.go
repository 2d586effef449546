package triage

import "fmt"

// AirwayTechnique selects which airway question the rescuer answers.
type AirwayTechnique string

const (
	TechniqueInjury      AirwayTechnique = "INJURY"
	TechniquePatencyRisk AirwayTechnique = "PATENCY_RISK"
)

// AirwayAction is the manual airway opening maneuver to use.
type AirwayAction string

const (
	ActionNone             AirwayAction = "NONE"
	ActionHeadTiltChinLift AirwayAction = "HEAD_TILT_CHIN_LIFT"
	ActionJawThrust        AirwayAction = "JAW_THRUST"
)

// AlertForeignBody is raised as soon as a foreign body is reported.
const AlertForeignBody = "remove visible foreign body/fluid"

var techniqueQuestions = map[AirwayTechnique]string{
	TechniqueInjury:      "Is a head, neck or spinal injury suspected?",
	TechniquePatencyRisk: "Is the airway at risk of obstruction (snoring, gurgling, decreased consciousness)?",
}

type techniqueKey struct {
	technique AirwayTechnique
	answer    bool
}

// TechniqueOutcome is one cell of the airway technique table.
type TechniqueOutcome struct {
	Severity Severity     `json:"severity"`
	Action   AirwayAction `json:"action"`
	Alert    string       `json:"alert,omitempty"`
}

var techniqueTable = map[techniqueKey]TechniqueOutcome{
	{TechniqueInjury, true}: {
		Severity: SeverityYellow, Action: ActionJawThrust,
		Alert: "suspected spinal injury — head-tilt-chin-lift contraindicated, use jaw-thrust",
	},
	{TechniqueInjury, false}: {
		Severity: SeverityGreen, Action: ActionHeadTiltChinLift,
	},
	{TechniquePatencyRisk, true}: {
		Severity: SeverityRed, Action: ActionHeadTiltChinLift,
		Alert: "airway at risk — open with head-tilt-chin-lift and keep it clear",
	},
	{TechniquePatencyRisk, false}: {
		Severity: SeverityGreen, Action: ActionNone,
	},
}

// TechniqueQuestion returns the question text shown for t.
func TechniqueQuestion(t AirwayTechnique) (string, error) {
	q, ok := techniqueQuestions[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTechnique, t)
	}
	return q, nil
}

// AirwayAssessment is the recorded state of the airway step.
type AirwayAssessment struct {
	ForeignBodies     *bool           `json:"foreign_bodies"`
	Technique         AirwayTechnique `json:"technique,omitempty"`
	Question          string          `json:"question,omitempty"`
	InjuryResult      *bool           `json:"injury_result"`
	RecommendedAction AirwayAction    `json:"recommended_action,omitempty"`
	Status            Severity        `json:"status"`
	Alert             string          `json:"alert,omitempty"`
}

// Complete reports whether both airway questions have been answered.
func (a AirwayAssessment) Complete() bool {
	return a.ForeignBodies != nil && a.InjuryResult != nil
}

type airwayAnswerKind int

const (
	airwaySetForeignBody airwayAnswerKind = iota + 1
	airwayChooseTechnique
	airwayAnswerQuestion
)

// AirwayAnswer is one input to the airway evaluator. Build it with SetForeignBody,
// ChooseTechnique or AnswerTechniqueQuestion.
type AirwayAnswer struct {
	kind      airwayAnswerKind
	flag      bool
	technique AirwayTechnique
}

func SetForeignBody(present bool) AirwayAnswer {
	return AirwayAnswer{kind: airwaySetForeignBody, flag: present}
}

func ChooseTechnique(t AirwayTechnique) AirwayAnswer {
	return AirwayAnswer{kind: airwayChooseTechnique, technique: t}
}

func AnswerTechniqueQuestion(yes bool) AirwayAnswer {
	return AirwayAnswer{kind: airwayAnswerQuestion, flag: yes}
}

// EvaluateAirway applies answer to state. The returned classification is the output of
// this answer alone; the state's Status is the worst of everything answered so far.
func EvaluateAirway(state AirwayAssessment, answer AirwayAnswer) (AirwayAssessment, Classification, error) {
	var out Classification

	switch answer.kind {
	case airwaySetForeignBody:
		present := answer.flag
		state.ForeignBodies = &present
		out = Classification{Severity: SeverityGreen}
		if present {
			out = Classification{Severity: SeverityRed, Alert: AlertForeignBody}
		}

	case airwayChooseTechnique:
		q, err := TechniqueQuestion(answer.technique)
		if err != nil {
			return state, Classification{}, err
		}
		state.Technique = answer.technique
		state.Question = q
		state.InjuryResult = nil
		state.RecommendedAction = ""
		return state.restatus(), Classification{}, nil

	case airwayAnswerQuestion:
		if state.Technique == "" {
			return state, Classification{}, fmt.Errorf("%w: choose an airway technique before answering", ErrOutOfSequence)
		}
		cell, ok := techniqueTable[techniqueKey{state.Technique, answer.flag}]
		if !ok {
			return state, Classification{}, fmt.Errorf("%w: %q", ErrInvalidTechnique, state.Technique)
		}
		yes := answer.flag
		state.InjuryResult = &yes
		state.RecommendedAction = cell.Action
		out = Classification{Severity: cell.Severity, Alert: cell.Alert}

	default:
		return state, Classification{}, fmt.Errorf("%w: airway answer", ErrInvalidValue)
	}

	return state.restatus(), out, nil
}

// restatus recomputes Status and Alert from the recorded answers.
func (a AirwayAssessment) restatus() AirwayAssessment {
	a.Status, a.Alert = SeverityGreen, ""
	if a.ForeignBodies != nil && *a.ForeignBodies {
		a.Status, a.Alert = SeverityRed, AlertForeignBody
	}
	if a.InjuryResult != nil {
		cell := techniqueTable[techniqueKey{a.Technique, *a.InjuryResult}]
		if cell.Severity.Rank() > a.Status.Rank() {
			a.Status, a.Alert = cell.Severity, cell.Alert
		}
	}
	if a.ForeignBodies == nil && a.InjuryResult == nil {
		a.Status = SeverityUnknown
	}
	return a
}
