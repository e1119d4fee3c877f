package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrInvalidImage = errors.New("image must be a non-empty jpeg, png, webp or heic")

// Image is a photo sent inline as a base64 data URL.
type Image struct {
	Data     []byte
	MIMEType string
}

// NewImage detects the MIME type of data and rejects what the vision
// models cannot read.
func NewImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrInvalidImage
	}
	mime := http.DetectContentType(data)
	switch mime {
	case "image/jpeg", "image/png", "image/webp":
	default:
		if !isHEIC(data) {
			return Image{}, fmt.Errorf("%w: got %s", ErrInvalidImage, mime)
		}
		mime = "image/heic"
	}
	return Image{Data: data, MIMEType: mime}, nil
}

func isHEIC(data []byte) bool {
	return len(data) > 12 && string(data[4:8]) == "ftyp" &&
		(string(data[8:12]) == "heic" || string(data[8:12]) == "heix" || string(data[8:12]) == "mif1")
}

func (i Image) dataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

type CareGuide struct {
	Light       string `json:"light"`
	Water       string `json:"water"`
	Humidity    string `json:"humidity"`
	Temperature string `json:"temperature"`
	Soil        string `json:"soil"`
}

type Identification struct {
	CommonName     string    `json:"common_name"`
	ScientificName string    `json:"scientific_name"`
	Family         string    `json:"family"`
	Category       string    `json:"category"`
	Confidence     float64   `json:"confidence"`
	Description    string    `json:"description"`
	Care           CareGuide `json:"care"`
	Toxicity       string    `json:"toxicity"`
	Difficulty     string    `json:"difficulty"`
}

type Issue struct {
	Name        string `json:"name"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type DiagnosisResult struct {
	Healthy     bool    `json:"healthy"`
	HealthScore int     `json:"health_score"`
	Issues      []Issue `json:"issues"`
	Treatment   string  `json:"treatment"`
	Prevention  string  `json:"prevention"`
}

// PlantProfile is what the compatibility prompt knows about a plant.
type PlantProfile struct {
	CommonName     string
	ScientificName string
	Light          string
	Water          string
	Humidity       string
	Temperature    string
}

type CompatibilityResult struct {
	Score      int      `json:"score"`
	Compatible bool     `json:"compatible"`
	Summary    string   `json:"summary"`
	LightMatch string   `json:"light_match"`
	WaterMatch string   `json:"water_match"`
	Tips       []string `json:"tips"`
}

// ChatTurn is one earlier message of a conversation.
type ChatTurn struct {
	Role    string
	Content string
}

const identifyPrompt = `You are Leafwise, an expert botanist. Identify the plant in the photo.
Return ONLY a JSON object with these exact fields:
{"common_name":"...","scientific_name":"Genus species","family":"...","category":"succulent|tropical|flowering|herb|fern|cactus|tree|vine|other",
"confidence":0.0-1.0,"description":"...","care":{"light":"...","water":"...","humidity":"...","temperature":"...","soil":"..."},
"toxicity":"...","difficulty":"easy|medium|hard"}
If the photo does not show a plant, return {"scientific_name":"","confidence":0}.`

const diagnosePrompt = `You are Leafwise, a plant pathologist. Examine the photo of a %s for pests, disease, nutrient problems and watering stress.
Return ONLY a JSON object with these exact fields:
{"healthy":true|false,"health_score":0-100,"issues":[{"name":"...","severity":"low|medium|high","description":"..."}],
"treatment":"...","prevention":"..."}
A healthy plant has an empty issues array.`

const compatibilityPrompt = `You are Leafwise, a houseplant care expert. Decide whether these two plants can share the same spot and care routine.
Plant A: %s
Plant B: %s
Return ONLY a JSON object with these exact fields:
{"score":0-100,"compatible":true|false,"summary":"...","light_match":"...","water_match":"...","tips":["..."]}`

const chatPrompt = `You are Leafwise, a friendly botanist helping people care for their houseplants.
Answer plant care questions concisely and practically. Decline topics unrelated to plants or gardening.`

// Identify names the species in the photo.
func (c *Client) Identify(ctx context.Context, img Image) (*Identification, error) {
	content, err := c.complete(ctx, call{
		task:  "identify",
		model: c.opts.VisionModel,
		json:  true,
		temp:  0.2,
		messages: []chatMessage{
			{Role: "system", Content: identifyPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Identify this plant."},
				{Type: "image_url", ImageURL: &imageURL{URL: img.dataURL(), Detail: "auto"}},
			}},
		},
	})
	if err != nil {
		return nil, err
	}

	var out Identification
	if err := decodeJSON(content, &out); err != nil {
		return nil, err
	}
	out.ScientificName = strings.TrimSpace(out.ScientificName)
	out.CommonName = strings.TrimSpace(out.CommonName)
	if out.ScientificName == "" {
		return nil, fmt.Errorf("%w: no species identified", ErrMalformedResponse)
	}
	if out.CommonName == "" {
		out.CommonName = out.ScientificName
	}
	out.Confidence = clampFloat(out.Confidence, 0, 1)
	return &out, nil
}

// Diagnose checks the health of a plant from a photo. plantName helps the
// model when the species is already known; it may be empty.
func (c *Client) Diagnose(ctx context.Context, img Image, plantName string) (*DiagnosisResult, error) {
	if plantName == "" {
		plantName = "houseplant"
	}
	content, err := c.complete(ctx, call{
		task:  "diagnose",
		model: c.opts.VisionModel,
		json:  true,
		temp:  0.2,
		messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(diagnosePrompt, plantName)},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Diagnose this plant."},
				{Type: "image_url", ImageURL: &imageURL{URL: img.dataURL(), Detail: "high"}},
			}},
		},
	})
	if err != nil {
		return nil, err
	}

	var out DiagnosisResult
	if err := decodeJSON(content, &out); err != nil {
		return nil, err
	}
	out.HealthScore = clampInt(out.HealthScore, 0, 100)
	if out.Issues == nil {
		out.Issues = []Issue{}
	}
	return &out, nil
}

// Compatibility rates keeping two plants together.
func (c *Client) Compatibility(ctx context.Context, a, b PlantProfile) (*CompatibilityResult, error) {
	content, err := c.complete(ctx, call{
		task:  "compatibility",
		model: c.opts.Model,
		json:  true,
		temp:  0.3,
		messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(compatibilityPrompt, a.describe(), b.describe())},
			{Role: "user", Content: "Assess the compatibility."},
		},
	})
	if err != nil {
		return nil, err
	}

	var out CompatibilityResult
	if err := decodeJSON(content, &out); err != nil {
		return nil, err
	}
	out.Score = clampInt(out.Score, 0, 100)
	if out.Tips == nil {
		out.Tips = []string{}
	}
	return &out, nil
}

func (p PlantProfile) describe() string {
	parts := []string{p.CommonName}
	if p.ScientificName != "" {
		parts = append(parts, "("+p.ScientificName+")")
	}
	for _, kv := range [][2]string{
		{"light", p.Light}, {"water", p.Water}, {"humidity", p.Humidity}, {"temperature", p.Temperature},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+": "+kv[1])
		}
	}
	return strings.Join(parts, "; ")
}

// Chat answers message given the earlier turns of the conversation.
func (c *Client) Chat(ctx context.Context, history []ChatTurn, message string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: chatPrompt})
	for _, t := range history {
		if t.Role != "user" && t.Role != "assistant" {
			continue
		}
		messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	content, err := c.complete(ctx, call{
		task:     "chat",
		model:    c.opts.Model,
		temp:     0.7,
		messages: messages,
	})
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}
	return content, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
