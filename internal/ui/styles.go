package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorText      = lipgloss.Color("255")
	colorPanel     = lipgloss.Color("236")
)

// SiteTitle is the "List Blog Wiki." banner.
var SiteTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// SiteSubtitle sits under the banner.
var SiteSubtitle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// PostTitle style for post titles in the list.
var PostTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText)

// SelectedPostTitle highlights the post under the cursor.
var SelectedPostTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText).
	Background(colorPrimary)

// MetaText style for dates, authors and reading time.
var MetaText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// DescriptionText style for list descriptions.
var DescriptionText = lipgloss.NewStyle().
	Foreground(lipgloss.Color("250"))

// ReadMore is the per-row link hint.
var ReadMore = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Underline(true)

// LoadMoreButton is the footer row while more pages exist.
var LoadMoreButton = lipgloss.NewStyle().
	Foreground(colorText).
	Background(colorPanel).
	Padding(0, 2)

// LoadMoreSelected is the footer row under the cursor.
var LoadMoreSelected = LoadMoreButton.
	Background(colorPrimary).
	Bold(true)

// Badge style for the "Blog" label and topic tags.
var Badge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(colorPanel).
	Padding(0, 1).
	MarginRight(1)

// TopBadge is the scroll-to-top affordance.
var TopBadge = lipgloss.NewStyle().
	Foreground(colorText).
	Background(colorHighlight).
	Bold(true).
	Padding(0, 1)

// HeaderBar is the floating detail header.
var HeaderBar = lipgloss.NewStyle().
	Foreground(colorText).
	Background(colorPanel).
	Padding(0, 1)

// ArticleTitle style for the detail page title.
var ArticleTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText).
	MarginBottom(1)

// SectionLabel style for headings like "Topics".
var SectionLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// BioCard frames the author card at the end of a post.
var BioCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// Avatar renders the author's initial.
var Avatar = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText).
	Background(colorPrimary).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(colorText).
	Background(colorPanel).
	Padding(0, 1)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for empty states and hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)
