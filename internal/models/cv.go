// internal/models/cv.go
package models

type CVData struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	Summary        string          `json:"summary"`
	Education      []CVEducation   `json:"education"`
	Experience     []CVExperience  `json:"experience"`
	Skills         []string        `json:"skills"`
	Interests      []string        `json:"interests"`
	Recognitions   []string        `json:"recognitions"`
	Certifications []CVCertificate `json:"certifications"`
	Volunteering   []CVVolunteer   `json:"volunteering"`
	Achievements   []string        `json:"achievements"`
	References     []CVReference   `json:"references"`
}

type CVEducation struct {
	School   string   `json:"school"`
	Degree   string   `json:"degree"`
	Location string   `json:"location"`
	Year     string   `json:"year"`
	Details  []string `json:"details"`
}

type CVExperience struct {
	Company     string   `json:"company"`
	Role        string   `json:"role"`
	Location    string   `json:"location"`
	Duration    string   `json:"duration"`
	Description []string `json:"description"`
}

type CVCertificate struct {
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

type CVVolunteer struct {
	Organization string   `json:"organization"`
	Role         string   `json:"role"`
	Location     string   `json:"location"`
	Duration     string   `json:"duration"`
	Description  []string `json:"description"`
}

type CVReference struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Contact  string `json:"contact"`
}
