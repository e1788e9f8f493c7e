package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface checks
var (
	_ Writer      = (*OpenAI)(nil)
	_ Illustrator = (*OpenAI)(nil)
	_ Transcriber = (*OpenAI)(nil)
	_ Speaker     = (*OpenAI)(nil)
)

// ErrEmptyReply is returned when the provider answers without content.
var ErrEmptyReply = errors.New("empty reply from provider")

// ChatService is the slice of the OpenAI SDK used for text generation.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// TranscriptionService is the slice of the OpenAI SDK used for speech-to-text.
type TranscriptionService interface {
	New(ctx context.Context, params openai.AudioTranscriptionNewParams, opts ...option.RequestOption) (*openai.Transcription, error)
}

// ImageService is the slice of the OpenAI SDK used for image generation.
type ImageService interface {
	Generate(ctx context.Context, params openai.ImageGenerateParams, opts ...option.RequestOption) (*openai.ImagesResponse, error)
}

// SpeechService is the slice of the OpenAI SDK used for text-to-speech.
type SpeechService interface {
	New(ctx context.Context, params openai.AudioSpeechNewParams, opts ...option.RequestOption) (*http.Response, error)
}

// Models names the provider model used for each capability.
type Models struct {
	Chat          string
	FollowUp      string
	Transcription string
	Image         string
	ImageSize     string
	Speech        string
	Voice         string
	MaxKeywords   int
}

// OpenAI implements every assistant capability on top of the OpenAI API.
type OpenAI struct {
	chat          ChatService
	transcription TranscriptionService
	images        ImageService
	speech        SpeechService
	models        Models
}

// NewOpenAI creates an assistant backed by the given client.
func NewOpenAI(client *openai.Client, models Models) *OpenAI {
	return &OpenAI{
		chat:          client.Chat.Completions,
		transcription: client.Audio.Transcriptions,
		images:        client.Images,
		speech:        client.Audio.Speech,
		models:        models,
	}
}

// complete runs a single system+user chat turn and returns the reply text.
func (o *OpenAI) complete(ctx context.Context, model, system, user string) (string, error) {
	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}),
		Model: openai.F(openai.ChatModel(model)),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// Summarize condenses a question/answer transcript into a diary entry.
func (o *OpenAI) Summarize(ctx context.Context, text string) (string, error) {
	out, err := o.complete(ctx, o.models.Chat,
		"You are a helpful assistant that summarizes text.",
		"Summarize the following text:\n"+text)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}

// GenerateTitle writes a short title for a diary entry.
func (o *OpenAI) GenerateTitle(ctx context.Context, text string) (string, error) {
	out, err := o.complete(ctx, o.models.Chat,
		"You are a helpful assistant that creates titles. Reply with the title only.",
		"Generate a title for the following content:\n"+text)
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}
	return cleanLine(out), nil
}

// ExtractKeywords asks for comma-separated keywords and parses them.
func (o *OpenAI) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	system := "You are a helpful assistant that extracts keywords. just keyword and comma separated"
	if o.models.MaxKeywords > 0 {
		system = fmt.Sprintf("%s, at most %d keywords", system, o.models.MaxKeywords)
	}
	out, err := o.complete(ctx, o.models.Chat, system,
		"Extract keywords from the following text:\n"+text)
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}
	return ParseKeywords(out, o.models.MaxKeywords), nil
}

// FollowUpQuestion drafts a new question from earlier answers.
func (o *OpenAI) FollowUpQuestion(ctx context.Context, history []QA) (string, error) {
	prompt := "Based on the following conversation history, generate a meaningful follow-up question:\n\n" +
		Transcript(history) + "\n\nFollow-up question:"

	model := o.models.FollowUp
	if model == "" {
		model = o.models.Chat
	}
	out, err := o.complete(ctx, model,
		"You are a helpful assistant that generates follow-up questions. Reply with the question only.",
		prompt)
	if err != nil {
		return "", fmt.Errorf("follow-up question: %w", err)
	}
	return cleanLine(out), nil
}

// GenerateImage renders a PNG for the prompt.
func (o *OpenAI) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	params := openai.ImageGenerateParams{
		Prompt:         openai.F(prompt),
		Model:          openai.F(openai.ImageModel(o.models.Image)),
		N:              openai.F(int64(1)),
		ResponseFormat: openai.F(openai.ImageGenerateParamsResponseFormatB64JSON),
	}
	if o.models.ImageSize != "" {
		params.Size = openai.F(openai.ImageGenerateParamsSize(o.models.ImageSize))
	}

	resp, err := o.images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("generate image: %w", ErrEmptyReply)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("generate image: decode payload: %w", err)
	}
	return &Image{Data: data, ContentType: "image/png", Extension: ".png"}, nil
}

// Transcribe sends recorded audio to the speech-to-text model.
func (o *OpenAI) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if filename == "" {
		filename = "answer.wav"
	}
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := o.transcription.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.FileParam(audio, filename, contentType),
		Model: openai.F(openai.AudioModel(o.models.Transcription)),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("transcribe: %w", ErrEmptyReply)
	}
	return text, nil
}

// Speak synthesizes MP3 speech for the text.
func (o *OpenAI) Speak(ctx context.Context, text string) (*Audio, error) {
	resp, err := o.speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          openai.F(text),
		Model:          openai.F(openai.SpeechModel(o.models.Speech)),
		Voice:          openai.F(openai.AudioSpeechNewParamsVoice(o.models.Voice)),
		ResponseFormat: openai.F(openai.AudioSpeechNewParamsResponseFormatMP3),
	})
	if err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speak: read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("speak: %w", ErrEmptyReply)
	}
	return &Audio{Data: data, ContentType: "audio/mpeg"}, nil
}
