package model

// Profile is the account profile captured into a job's snapshot at creation.
type Profile struct {
	Job        string `json:"job" validate:"max=80"`
	University string `json:"university" validate:"max=120"`
	DOB        string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Snapchat   string `json:"snapchat" validate:"max=64"`
	State      string `json:"state" validate:"required,max=64"`
	City       string `json:"city" validate:"required,max=64"`
	DeviceID   string `json:"deviceId" validate:"max=64"`
}

// Location is the "city, state" string used by step messages.
func (p Profile) Location() string {
	return p.City + ", " + p.State
}

// DefaultProfile mirrors the form defaults shown to operators.
func DefaultProfile() Profile {
	return Profile{
		Job:        "Content Creator",
		University: "UT Dallas",
		DOB:        "2001-04-16",
		Snapchat:   "snap.ava",
		State:      "Texas",
		City:       "Dallas",
		DeviceID:   "device-201",
	}
}

// ModelProfile is a creator persona jobs can be launched for.
type ModelProfile struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Folder string   `json:"folder"`
	Photos []string `json:"photos"`
}

// PhotoURL returns the public path of one of the model's photos.
func (m ModelProfile) PhotoURL(filename string) string {
	return "/models/" + m.Folder + "/" + filename
}
