package hh

// SearchResponse mirrors the top-level hh.ru /vacancies search response.
type SearchResponse struct {
	Items   []VacancySummary `json:"items"`
	Found   int              `json:"found"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// VacancySummary is the shortened vacancy record returned by the search
// endpoint. Only the ID is needed for deduplication; the remaining fields
// mirror the payload for logging.
type VacancySummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AlternateURL string    `json:"alternate_url"`
	Area         *Area     `json:"area,omitempty"`
	Employer     *Employer `json:"employer,omitempty"`
	PublishedAt  string    `json:"published_at"`
}

// VacancyDetail mirrors the full vacancy object from GET /vacancies/{id}.
type VacancyDetail struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	KeySkills    []KeySkill `json:"key_skills"`
	Experience   *Dict      `json:"experience,omitempty"`
	Employment   *Dict      `json:"employment,omitempty"`
	Schedule     *Dict      `json:"schedule,omitempty"`
	Salary       *Salary    `json:"salary,omitempty"`
	Area         *Area      `json:"area,omitempty"`
	Address      *Address   `json:"address,omitempty"`
	Employer     *Employer  `json:"employer,omitempty"`
	AlternateURL string     `json:"alternate_url"`
	PublishedAt  string     `json:"published_at"` // ISO-8601, Z-suffixed UTC
}

// Employer is the employer sub-object embedded in vacancy payloads.
type Employer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AlternateURL string `json:"alternate_url"`
	SiteURL      string `json:"site_url"`
}

// Salary is the salary range sub-object. Every field may be absent.
type Salary struct {
	From     *int    `json:"from"`
	To       *int    `json:"to"`
	Currency *string `json:"currency"`
	Gross    *bool   `json:"gross"`
}

// KeySkill is a single skill tag entry.
type KeySkill struct {
	Name string `json:"name"`
}

// Dict is an hh.ru dictionary reference (id + human label).
type Dict struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Area is a region reference.
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Address is the optional street address sub-object.
type Address struct {
	City string `json:"city"`
	Raw  string `json:"raw"`
}
