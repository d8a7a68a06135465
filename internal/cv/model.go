package cv

import "time"

// Personal holds the contact and demographic section of a CV.
type Personal struct {
	FullName        string `json:"fullName"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	Location        string `json:"location"`
	Province        string `json:"province"`
	DateOfBirth     string `json:"dateOfBirth"`
	Gender          string `json:"gender"`
	Nationality     string `json:"nationality"`
	MaritalStatus   string `json:"maritalStatus"`
	Languages       string `json:"languages"`
	DriversLicence  string `json:"driversLicence"`
	Disability      string `json:"disability"`
	DisabilityOther string `json:"disabilityOther"`
	Objective       string `json:"objective"`
	// Photo is an embedded image as a data URL.
	Photo string `json:"photo,omitempty"`
}

// Experience is one job entry.
type Experience struct {
	JobTitle   string `json:"jobTitle"`
	Company    string `json:"company"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	CurrentJob bool   `json:"currentJob"`
	Duties     string `json:"duties"`
}

// Education is one qualification entry.
type Education struct {
	Institution   string `json:"institution"`
	Qualification string `json:"qualification"`
	Year          string `json:"year"`
}

// Reference is one referee.
type Reference struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Document is the shape of the working CV and of every snapshot's data.
type Document struct {
	Personal    Personal     `json:"personal"`
	Experience  []Experience `json:"experience"`
	Education   []Education  `json:"education"`
	Skills      []string     `json:"skills"`
	References  []Reference  `json:"references"`
	Template    string       `json:"template"`
	AccentColor string       `json:"accentColor,omitempty"`
}

// SavedCV is a named snapshot of a Document.
type SavedCV struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Template  string    `json:"template"`
	Data      Document  `json:"data"`
}

// TrashedCV is a soft-deleted snapshot waiting in the recycle bin.
type TrashedCV struct {
	SavedCV
	DeletedAt time.Time `json:"deletedAt"`
}
