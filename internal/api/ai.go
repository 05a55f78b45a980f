package api

import (
	"github.com/gofiber/fiber/v2"
)

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

type summarizeRequest struct {
	ConversationText string `json:"conversationText"`
}

func (s *Server) detectAndTranslate(c *fiber.Ctx) error {
	var req translateRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" || req.TargetLanguage == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text and targetLanguage are required",
		})
	}

	detected, err := s.lingua.Detect(c.UserContext(), req.Text)
	if err != nil {
		s.log.Errorw("language detection failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "language detection failed",
			"details": err.Error(),
		})
	}

	if detected == req.TargetLanguage {
		return c.JSON(fiber.Map{
			"detectedLanguage": detected,
			"translatedText":   req.Text,
			"message":          "text is already in the target language",
		})
	}

	translated, err := s.lingua.Translate(c.UserContext(), req.Text, req.TargetLanguage)
	if err != nil {
		s.log.Errorw("translation failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "translation failed",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"detectedLanguage": detected,
		"translatedText":   translated,
	})
}

func (s *Server) summarizeConversation(c *fiber.Ctx) error {
	var req summarizeRequest
	if err := c.BodyParser(&req); err != nil || req.ConversationText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "conversationText is required",
		})
	}

	summary, err := s.lingua.Summarize(c.UserContext(), req.ConversationText)
	if err != nil {
		s.log.Errorw("summarization failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to summarize conversation",
		})
	}

	return c.JSON(fiber.Map{"summary": summary})
}
