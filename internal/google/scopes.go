package google

// Scopes are the Google OAuth scopes requested at consent time.
//
// The list is append-only: new capabilities add new scope URIs at the end.
// A token granted before a scope was added does not cover it - the user has
// to remove the credential file and run the authorization flow again. The
// consent URL always forces re-approval so a repeated flow re-grants every
// scope in the list.
var Scopes = []string{
	// Google Docs
	"https://www.googleapis.com/auth/documents",

	// Google Sheets
	"https://www.googleapis.com/auth/spreadsheets",

	// Google Drive
	"https://www.googleapis.com/auth/drive",

	// Google Calendar
	"https://www.googleapis.com/auth/calendar",
}
