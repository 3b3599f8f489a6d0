// internal/apex/credentials.go
package apex

import (
	"fmt"
	"os"
)

// LucidchartCredentials is the login pair embedded into diagram task
// instructions. Never log the password.
type LucidchartCredentials struct {
	Email    string
	Password string
}

// LookupLucidchartCredentials reads the login pair from the environment.
func LookupLucidchartCredentials() (LucidchartCredentials, error) {
	email := os.Getenv("LUCIDCHART_EMAIL")
	password := os.Getenv("LUCIDCHART_PASSWORD")
	if email == "" || password == "" {
		return LucidchartCredentials{}, fmt.Errorf("LUCIDCHART_EMAIL and LUCIDCHART_PASSWORD must be set")
	}
	return LucidchartCredentials{Email: email, Password: password}, nil
}
