package api

// Profile is the normalized user profile. Roles are attached by the boot
// sequencer from decoded token claims; the profile endpoint itself does
// not return them.
type Profile struct {
	UserID string
	Email  string
	Name   string
	Roles  []string
}

// profilePayload mirrors the backend's profile document. Different backend
// versions name the id field differently; all three spellings are
// reconciled into one canonical UserID.
type profilePayload struct {
	UserID    string `json:"userId"`
	UserIDAlt string `json:"user_id"`
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

func (p *profilePayload) normalize() *Profile {
	id := p.UserID
	if id == "" {
		id = p.UserIDAlt
	}
	if id == "" {
		id = p.ID
	}
	return &Profile{
		UserID: id,
		Email:  p.Email,
		Name:   p.Name,
	}
}
