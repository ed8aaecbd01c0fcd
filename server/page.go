package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/papercomputeco/chatsphere/pkg/conversation"
	"github.com/papercomputeco/chatsphere/pkg/input"
	"github.com/papercomputeco/chatsphere/pkg/session"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

// BusyText is shown while a turn is waiting on the backend.
const BusyText = "Generating response..."

// userLabel is how the user is named in the transcript.
const userLabel = "You"

type themeOption struct {
	Value    session.Theme
	Label    string
	Selected bool
}

type messageView struct {
	Glyph  string
	Sender string
	Clock  string
	Text   string
}

type pageData struct {
	Persona         string
	Theme           session.Theme
	Themes          []themeOption
	SpeechAvailable bool
	Notice          *session.Notice
	Messages        []messageView
	BusyText        string
	ListeningText   string
}

func parsePage() (*template.Template, error) {
	t, err := template.ParseFS(templateFS, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return t, nil
}

// senderLabel names the author of an utterance.
func senderLabel(s conversation.Sender, persona string) string {
	if s == conversation.User {
		return userLabel
	}
	return persona
}

func (s *Server) renderPage(sess *session.Session) ([]byte, error) {
	persona := s.inputs.Controller().Persona()
	theme := sess.Theme()

	utterances := sess.Conversation.Utterances()
	messages := make([]messageView, len(utterances))
	for i, u := range utterances {
		messages[i] = messageView{
			Glyph:  u.Sender.Glyph(),
			Sender: senderLabel(u.Sender, persona),
			Clock:  u.Clock(),
			Text:   u.Text,
		}
	}

	data := pageData{
		Persona: persona,
		Theme:   theme,
		Themes: []themeOption{
			{Value: session.ThemeDark, Label: session.ThemeDark.Label(), Selected: theme == session.ThemeDark},
			{Value: session.ThemeLight, Label: session.ThemeLight.Label(), Selected: theme == session.ThemeLight},
		},
		SpeechAvailable: s.inputs.SpeechAvailable(),
		Notice:          sess.TakeNotice(),
		Messages:        messages,
		BusyText:        BusyText,
		ListeningText:   input.MsgListening,
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
