package domain

// Officer is a roster entry. The id is a human-assigned code; identity is
// asserted by selection, not authenticated.
type Officer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
