package career

type Career struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	PathwayIDs  []string `json:"pathwayIds"`
}

var catalog = []Career{
	{ID: "frontend-engineer", Title: "Frontend Engineer", Description: "Builds user-facing web applications.", Skills: []string{"JavaScript", "React", "CSS"}, PathwayIDs: []string{"frontend-development"}},
	{ID: "backend-engineer", Title: "Backend Engineer", Description: "Designs services, APIs and data models.", Skills: []string{"Go", "SQL", "System Design"}, PathwayIDs: []string{"backend-development"}},
	{ID: "data-scientist", Title: "Data Scientist", Description: "Turns data into models and insights.", Skills: []string{"Python", "Statistics", "Machine Learning"}, PathwayIDs: []string{"data-science"}},
	{ID: "cloud-engineer", Title: "Cloud Engineer", Description: "Runs infrastructure on cloud platforms.", Skills: []string{"AWS", "Kubernetes", "Terraform"}, PathwayIDs: []string{"cloud-engineering"}},
	{ID: "ux-designer", Title: "UX Designer", Description: "Shapes how products look and feel.", Skills: []string{"Figma", "User Research", "Prototyping"}, PathwayIDs: []string{"ux-design"}},
	{ID: "security-analyst", Title: "Security Analyst", Description: "Protects systems from threats.", Skills: []string{"Networking", "SIEM", "Incident Response"}, PathwayIDs: []string{"cybersecurity"}},
	{ID: "product-manager", Title: "Product Manager", Description: "Decides what gets built and why.", Skills: []string{"Roadmapping", "Analytics", "Communication"}, PathwayIDs: []string{"product-management"}},
	{ID: "mobile-developer", Title: "Mobile Developer", Description: "Ships apps for iOS and Android.", Skills: []string{"Kotlin", "Swift", "Flutter"}, PathwayIDs: []string{"mobile-development"}},
}

func Catalog() []Career {
	return append([]Career(nil), catalog...)
}

func Lookup(id string) (Career, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Career{}, false
}

// Goals is the local-only career selection state.
type Goals struct {
	Goals    []string `json:"goals"`
	Selected *string  `json:"selected"`
}
