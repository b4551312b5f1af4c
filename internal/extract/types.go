package extract

// ChapterQA is the structured record extracted from one chapter PDF:
// an ordered list of exam questions with their worked solutions.
type ChapterQA struct {
	Questions []QuestionAnswer `json:"questions"`
}

// QuestionAnswer is a single multiple-choice question with one or two
// unit-system-specific solutions.
type QuestionAnswer struct {
	QuestionNumber      string                `json:"question_number"`
	QuestionText        string                `json:"question_text"`
	QuestionImages      []SolutionImage       `json:"question_images,omitempty"`
	Options             MultipleChoiceOptions `json:"multiple_choice_options"`
	CorrectAnswer       string                `json:"correct_answer"`
	CustomaryUSSolution *Solution             `json:"customary_us_solution,omitempty"`
	SISolution          *Solution             `json:"si_solution,omitempty"`
}

// MultipleChoiceOptions holds the four answer options, text with units.
type MultipleChoiceOptions struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// Solution is a worked solution in one unit system.
type Solution struct {
	Method       string          `json:"method"`
	Calculations string          `json:"calculations"`
	FinalAnswer  string          `json:"final_answer"`
	Images       []SolutionImage `json:"images,omitempty"`
}

// SolutionImage describes a diagram, chart, or figure referenced by a
// question or solution.
type SolutionImage struct {
	Description string `json:"description"`
	ImageData   string `json:"image_data,omitempty"`
}
