package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowAPIKeyGuide writes step-by-step instructions for obtaining news API
// credentials
func ShowAPIKeyGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "NAVER NEWS SEARCH API CREDENTIALS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The news command calls the Naver Open API and needs a client ID and")
	fmt.Fprintln(w, "client secret from a registered application.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Register an application")
	fmt.Fprintln(w, "   - Go to https://developers.naver.com/apps/#/register")
	fmt.Fprintln(w, "   - Log in and choose a name for the application")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 2: Enable the search API")
	fmt.Fprintln(w, "   - Under 'Usage API' select '검색' (search)")
	fmt.Fprintln(w, "   - Add a web service URL, http://localhost is accepted")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 3: Copy the credentials")
	fmt.Fprintln(w, "   - Open the application page under 'My Applications'")
	fmt.Fprintln(w, "   - Copy 'Client ID' and 'Client Secret'")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "TIPS:")
	fmt.Fprintln(w, "   - The search API allows 25,000 calls per day per application")
	fmt.Fprintln(w, "   - Credentials can also be passed through")
	fmt.Fprintf(w, "     %s and %s\n", envClientID, envClientSecret)
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
