package ministries

// Parish representa una parroquia del directorio.
type Parish struct {
	ID      string
	Name    string
	Address string

	WebsiteURL   string
	PhoneNumber  string
	MassSchedule string
}

// Ministry pertenece a una parroquia y tiene un único usuario dueño,
// que es quien puede administrar sus eventos.
type Ministry struct {
	ID          string
	ParishID    string
	OwnerUserID string

	Name        string
	Description string
	ContactInfo string
}
