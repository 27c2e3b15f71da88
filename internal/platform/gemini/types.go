// Package gemini implements the generation interface using Google's
// Gemini API.
package gemini

// promptData is the data passed to the prompt template.
type promptData struct {
	JobTitle          string
	YearsOfExperience int
	KeySkills         []string
	ProfessionalGoal  string
	QuestionCount     int
}

// ResponseSchema is the expected structure of the Gemini API response.
type ResponseSchema struct {
	// Questions is the array of interview questions generated for the
	// profile.
	Questions []QuestionSchema `json:"questions"`
}

// QuestionSchema is a single interview question in the API response.
type QuestionSchema struct {
	// Text is the question itself.
	Text string `json:"text"`

	// Category must be one of Technical, Behavioral or Situational.
	Category string `json:"category"`

	// Difficulty must be one of Novice, Advanced or Hard.
	Difficulty string `json:"difficulty"`

	// Explanation describes what the interviewer is probing for.
	Explanation string `json:"explanation,omitempty"`

	// Example is a sketch of a strong answer.
	Example string `json:"example,omitempty"`

	// TechnicalTerms are term/definition pairs relevant to the question.
	TechnicalTerms []TechnicalTermSchema `json:"technical_terms,omitempty"`
}

// TechnicalTermSchema is a term/definition pair in the API response.
type TechnicalTermSchema struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}
