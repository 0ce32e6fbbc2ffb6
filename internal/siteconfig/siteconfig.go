// Package siteconfig holds the static site metadata consumed by page
// rendering and meta-tag generation. It is configuration, not state.
package siteconfig

// Author identifies the site maintainer.
type Author struct {
	Name  string
	Email string
	URL   string
}

// Social lists the public profiles linked from the footer.
type Social struct {
	GitHub   string
	Twitter  string
	LinkedIn string
}

// Site is the static metadata of the dashboard.
type Site struct {
	Name        string
	Description string
	URL         string
	Keywords    []string
	Language    string
	Locale      string
	Email       string
	Author      Author
	Social      Social
}

// Default is the metadata for the Linkeun dashboard deployment.
var Default = Site{
	Name: "Linkeun Mono",
	Description: "All-in-one platform for link management and developer tools. " +
		"Shorten URLs, track analytics, and access powerful utilities including " +
		"QR generators, JSON formatters, and text analyzers.",
	URL: "https://dash.linkeun.com",
	Keywords: []string{
		"link shortener",
		"URL shortener",
		"developer tools",
		"link analytics",
		"click tracking",
		"QR code generator",
		"password generator",
	},
	Language: "en",
	Locale:   "en_US",
	Email:    "support@linkeun.com",
	Author: Author{
		Name:  "Linkeun",
		Email: "support@linkeun.com",
		URL:   "https://linkeun.com",
	},
	Social: Social{
		GitHub:   "https://github.com/linkeunid",
		Twitter:  "https://twitter.com/linkeunid",
		LinkedIn: "https://linkedin.com/company/linkeunid",
	},
}
