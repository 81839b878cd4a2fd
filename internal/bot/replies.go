package bot

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// countPlaceholder in Replies.MenuFooter is replaced by the number of
// neighbourhoods found in the price sheet.
const countPlaceholder = "{count}"

// Replies holds every text the bot can send.
type Replies struct {
	Keyword    string   `yaml:"keyword"`
	Prompt     string   `yaml:"prompt"`
	MenuTitle  string   `yaml:"menu_title"`
	MenuIntro  string   `yaml:"menu_intro"`
	Options    []string `yaml:"options"`
	MenuFooter string   `yaml:"menu_footer"`
}

func DefaultReplies() Replies {
	return Replies{
		Keyword:   "orçamento",
		Prompt:    "Olá! Envie 'orçamento' para iniciar o atendimento.",
		MenuTitle: "🚛 *Orçamento de Caçamba*",
		MenuIntro: "Escolha o tipo de resíduo:",
		Options: []string{
			"1️⃣ Limpo",
			"2️⃣ Sujo",
			"3️⃣ Entulho misto",
			"4️⃣ Madeira",
			"5️⃣ Outros",
		},
		MenuFooter: "*Obs:* Valores variam por bairro ({count} cadastrados).",
	}
}

// LoadReplies reads a YAML file and overlays its non-empty fields on the
// defaults. An empty path returns the defaults.
func LoadReplies(path string) (Replies, error) {
	replies := DefaultReplies()
	if path == "" {
		return replies, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return replies, fmt.Errorf("failed to read replies file: %w", err)
	}

	var override Replies
	if err := yaml.Unmarshal(data, &override); err != nil {
		return replies, fmt.Errorf("failed to parse replies file %s: %w", path, err)
	}

	if strings.TrimSpace(override.Keyword) != "" {
		replies.Keyword = strings.TrimSpace(override.Keyword)
	}
	if override.Prompt != "" {
		replies.Prompt = override.Prompt
	}
	if override.MenuTitle != "" {
		replies.MenuTitle = override.MenuTitle
	}
	if override.MenuIntro != "" {
		replies.MenuIntro = override.MenuIntro
	}
	if len(override.Options) > 0 {
		replies.Options = override.Options
	}
	if override.MenuFooter != "" {
		replies.MenuFooter = override.MenuFooter
	}
	return replies, nil
}

// Matches reports whether text contains the keyword, ignoring case.
func (r Replies) Matches(text string) bool {
	if r.Keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(r.Keyword))
}

// Menu renders the budget menu for the given neighbourhood count.
func (r Replies) Menu(neighborhoods int) string {
	var sb strings.Builder
	sb.WriteString(r.MenuTitle)
	sb.WriteString("\n\n")
	sb.WriteString(r.MenuIntro)
	sb.WriteString("\n")
	for _, option := range r.Options {
		sb.WriteString(option)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.ReplaceAll(r.MenuFooter, countPlaceholder, strconv.Itoa(neighborhoods)))
	return sb.String()
}
