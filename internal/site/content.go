// Package site serves the fixed marketing content of the public website.
package site

// Identity is the response of GET /.
type Identity struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	Region  string `json:"region"`
	HQ      string `json:"hq"`
}

type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Profile is the response of GET /api/company.
type Profile struct {
	Name        string   `json:"name"`
	Headline    string   `json:"headline"`
	Subheadline string   `json:"subheadline"`
	Stats       []Stat   `json:"stats"`
	Awards      []string `json:"awards"`
}

type Service struct {
	Title   string   `json:"title"`
	Desc    string   `json:"desc"`
	Bullets []string `json:"bullets"`
}

const companyName = "SPEED OF MASTRY"

// CompanyIdentity returns the brand identity.
func CompanyIdentity() Identity {
	return Identity{
		Name:    companyName,
		Tagline: "Building high-performance technology for the Gulf.",
		Region:  "Gulf Cooperation Council",
		HQ:      "Saudi Arabia",
	}
}

// CompanyProfile returns headline copy, stats and awards. Each call returns a fresh copy.
func CompanyProfile() Profile {
	return Profile{
		Name:        companyName,
		Headline:    "The leading technology partner across the Gulf and Saudi Arabia",
		Subheadline: "From strategy to delivery, we engineer scalable platforms, cloud-native systems, and AI solutions that power regional leaders.",
		Stats: []Stat{
			{Label: "Projects Delivered", Value: "+120"},
			{Label: "Enterprise Uptime", Value: "99.99%"},
			{Label: "Avg. Launch Time", Value: "8 weeks"},
		},
		Awards: []string{
			"Top Technology Innovator – KSA",
			"Best Cloud Modernization Partner – GCC",
		},
	}
}

// Services returns the service catalog in display order.
func Services() []Service {
	return []Service{
		{
			Title:   "Custom Software",
			Desc:    "High-performance web and mobile applications tailored to your business.",
			Bullets: []string{"Product engineering", "Microservices", "API platforms"},
		},
		{
			Title:   "Cloud & DevOps",
			Desc:    "Secure, scalable cloud on AWS, Azure, and GCP with modern DevOps.",
			Bullets: []string{"Kubernetes", "CI/CD", "Observability"},
		},
		{
			Title:   "AI & Data",
			Desc:    "Applied AI, analytics, and data platforms for real impact.",
			Bullets: []string{"LLM apps", "MLOps", "Data lakes"},
		},
		{
			Title:   "Digital Transformation",
			Desc:    "From legacy to modern, accelerate delivery across the enterprise.",
			Bullets: []string{"Cloud migration", "ERP integrations", "Governance"},
		},
	}
}
