package config

// DefaultCardParallax is the image drift of a card, in percent of its height.
const DefaultCardParallax = -20.0

// Site describes the page: its sections, the contact block and the footer.
type Site struct {
	Version  string    `yaml:"version"`
	Title    string    `yaml:"title"`
	Sections []Section `yaml:"sections"`
	Contact  Contact   `yaml:"contact"`
	Footer   Footer    `yaml:"footer"`
}

// Section is a vertical block of the page holding cards.
type Section struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle,omitempty"`
	// Layout is "services" (full-width cards with a carousel) or "projects" (tilt grid).
	Layout string `yaml:"layout"`
	// Background and content drift in percent of the section height.
	BackgroundParallax float64 `yaml:"background_parallax,omitempty"`
	ContentParallax    float64 `yaml:"content_parallax,omitempty"`
	Cards              []Card  `yaml:"cards"`
}

// Card is one service or project tile.
type Card struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	Technologies  []string `yaml:"technologies,omitempty"`
	Links         []Link   `yaml:"links,omitempty"`
	Images        []string `yaml:"images"`
	ImagePosition string   `yaml:"image_position,omitempty"`
	ComingSoon    bool     `yaml:"coming_soon,omitempty"`

	// RotationPeriod is in seconds; zero uses the runtime default.
	RotationPeriod float64  `yaml:"rotation_period,omitempty"`
	Tilt           *float64 `yaml:"tilt,omitempty"`
	Parallax       *float64 `yaml:"parallax,omitempty"`
	Once           bool     `yaml:"once,omitempty"`
	Reveal         Reveal   `yaml:"reveal,omitempty"`
}

// Reveal selects the entrance animation of a card. Steps are only read by
// the "scenario" effect.
type Reveal struct {
	Effect string     `yaml:"effect,omitempty"`
	Steps  []StepSpec `yaml:"steps,omitempty"`
}

// StepSpec is one authored animation step.
type StepSpec struct {
	// Target is "card", "image", "title" or "description".
	Target string `yaml:"target"`
	// Split breaks text targets into "chars" or "words".
	Split    string             `yaml:"split,omitempty"`
	From     map[string]float64 `yaml:"from,omitempty"`
	To       map[string]float64 `yaml:"to"`
	Duration float64            `yaml:"duration"`
	Ease     string             `yaml:"ease,omitempty"`
	// Position is "+=0.2", "-=0.5", "<" or "<0.1".
	Position string  `yaml:"position,omitempty"`
	Stagger  float64 `yaml:"stagger,omitempty"`
}

type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Contact configures the contact section and the message form.
type Contact struct {
	Heading string `yaml:"heading"`
	Email   string `yaml:"email"`
	ToEmail string `yaml:"to_email"`
}

type Footer struct {
	Tagline string `yaml:"tagline"`
	Social  []Link `yaml:"social"`
	Links   []Link `yaml:"links"`
}

// DefaultSite is the built-in portfolio used when no site file is given.
func DefaultSite() *Site {
	return &Site{
		Version: "1.0",
		Title:   "Portfolio",
		Sections: []Section{
			{
				ID:                 "about",
				Title:              "Services",
				Subtitle:           "What I build",
				Layout:             "services",
				BackgroundParallax: -30,
				ContentParallax:    -10,
				Cards: []Card{
					{
						Title:         "Web Development",
						Description:   "Creating responsive and dynamic web applications with cutting-edge technologies and modern frameworks. Our expertise spans across React, Next.js, and other modern tools to deliver exceptional web experiences.",
						Images:        []string{"https://cdn.dribbble.com/userupload/18243759/file/original-59370a3ab6d5515b5aa8531af68e7392.png"},
						ImagePosition: "left",
					},
					{
						Title:         "UI/UX Design",
						Description:   "Crafting beautiful, intuitive interfaces that deliver exceptional user experiences and engagement. We focus on user-centered design principles to create interfaces that are both beautiful and functional.",
						Images:        []string{"https://elements-resized.envatousercontent.com/elements-cover-images/94fef660-6fd4-4774-b52d-9df5045730a2"},
						ImagePosition: "right",
					},
					{
						Title:       "Mobile Apps",
						Description: "Building powerful cross-platform mobile applications that perform seamlessly across devices. Using React Native and Flutter to create native-like experiences for both iOS and Android platforms.",
						Images: []string{
							"http://elements-resized.envatousercontent.com/elements-cover-images/606b5511-4947-4d99-af4e-f4e11ea77464",
							"https://images.unsplash.com/photo-1526045431048-f857369baa09",
						},
						ImagePosition: "left",
					},
					{
						Title:         "Full Stack",
						Description:   "Delivering end-to-end web solutions with robust backend systems and elegant frontends. Our full-stack expertise ensures seamless integration between all layers of your application.",
						Images:        []string{"https://cdn.dribbble.com/userupload/17738653/file/original-0c4f47eb1798e18b1f3463631bea62ae.jpg"},
						ImagePosition: "right",
					},
				},
			},
			{
				ID:       "features",
				Title:    "Featured Projects",
				Subtitle: "A showcase of my recent work, featuring full-stack applications, interactive experiences, and innovative solutions.",
				Layout:   "projects",
				Cards: []Card{
					{
						Title:        "Project One",
						Description:  "A full-stack e-commerce platform built with Next.js, featuring real-time updates and seamless payment integration.",
						Technologies: []string{"Next.js", "Node.js", "MongoDB", "Stripe"},
						Links: []Link{
							{Label: "GitHub", Href: "https://github.com/yourusername/project-one"},
							{Label: "Live", Href: "https://project-one.com"},
						},
						Images: []string{"videos/feature-1.mp4"},
						Once:   true,
					},
					{
						Title:        "AI Assistant",
						Description:  "An AI-powered coding assistant that helps developers write better code faster.",
						Technologies: []string{"Python", "OpenAI", "React", "FastAPI"},
						Links: []Link{
							{Label: "GitHub", Href: "https://github.com/yourusername/ai-assistant"},
							{Label: "Live", Href: "https://ai-assistant.com"},
						},
						Images: []string{"videos/feature-2.mp4"},
						Once:   true,
					},
					{
						Title:        "Social Hub",
						Description:  "A real-time social platform for developers to collaborate and share ideas.",
						Technologies: []string{"React", "Firebase", "WebSocket", "Tailwind"},
						Links:        []Link{{Label: "GitHub", Href: "https://github.com/yourusername/social-hub"}},
						Images:       []string{"videos/feature-3.mp4"},
						ComingSoon:   true,
						Once:         true,
					},
					{
						Title:        "Data Viz",
						Description:  "Interactive data visualization dashboard for complex datasets.",
						Technologies: []string{"D3.js", "Vue.js", "Express", "PostgreSQL"},
						Links: []Link{
							{Label: "GitHub", Href: "https://github.com/yourusername/data-viz"},
							{Label: "Live", Href: "https://data-viz.com"},
						},
						Images: []string{"videos/feature-4.mp4"},
						Once:   true,
					},
				},
			},
		},
		Contact: Contact{
			Heading: "Ready to Turn Your Ideas Into Reality?",
			Email:   "kentashley011@gmail.com",
			ToEmail: "your-email@example.com",
		},
		Footer: Footer{
			Tagline: "Building digital experiences",
			Social: []Link{
				{Label: "Linkedin", Href: "https://www.linkedin.com/in/kent-ashley-clementir-776090217"},
				{Label: "Upwork", Href: "https://www.upwork.com/freelancers/~01eebc38b17d75dfab"},
			},
			Links: []Link{
				{Label: "Privacy Policy", Href: "#privacy-policy"},
				{Label: "Terms of Service", Href: "#terms-of-service"},
				{Label: "Contact Us", Href: "#contact-us"},
			},
		},
	}
}
