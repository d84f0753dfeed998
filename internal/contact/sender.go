package contact

// Sender is the identity signed at the bottom of every generated email.
type Sender struct {
	Name     string `yaml:"name"`
	Position string `yaml:"position"`
	Company  string `yaml:"company"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
}
