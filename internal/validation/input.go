package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength           = 3
	MaxUsernameLength           = 30
	MinDisplayNameLength        = 2
	MaxDisplayNameLength        = 100
	MinBookingTitleLength       = 3
	MaxBookingTitleLength       = 200
	MaxBookingDescriptionLength = 5000
	MaxLocationLength           = 200
	MinDisputeReasonLength      = 3
	MaxDisputeReasonLength      = 200
	MinDisputeDescriptionLength = 10
	MaxDisputeDescriptionLength = 5000
	MaxDisputeEvidenceCount     = 20
	MaxEvidenceURILength        = 500
	MaxReviewContentLength      = 2000
	MaxReviewResponseLength     = 2000
	MinMessageLength            = 1
	MaxMessageLength            = 5000
	MaxMessageAttachments       = 10
	MinRating                   = 1
	MaxRating                   = 5
	MinHourlyRate               = 0.0
	MaxHourlyRate               = 100000.0
	MaxEstimatedHours           = 10000.0
	MaxSkillLength              = 50
	MaxSkillsCount              = 50
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	displayName = strings.TrimSpace(displayName)

	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	displayNameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateBookingTitle проверяет заголовок бронирования.
func ValidateBookingTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок бронирования обязателен")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("заголовок бронирования", title, MinBookingTitleLength, MaxBookingTitleLength)
}

// ValidateEventDates проверяет даты мероприятия.
func ValidateEventDates(eventDate time.Time, eventEndDate *time.Time) error {
	if eventDate.IsZero() {
		return fmt.Errorf("дата мероприятия обязательна")
	}

	if eventEndDate != nil && eventEndDate.Before(eventDate) {
		return fmt.Errorf("дата окончания мероприятия не может быть раньше даты начала")
	}

	return nil
}

// ValidateHourlyRate проверяет почасовую ставку.
func ValidateHourlyRate(rate float64) error {
	if rate < MinHourlyRate {
		return fmt.Errorf("почасовая ставка не может быть отрицательной")
	}
	if rate > MaxHourlyRate {
		return fmt.Errorf("почасовая ставка не может превышать %.0f", MaxHourlyRate)
	}
	return nil
}

// ValidateEstimatedHours проверяет оценку трудозатрат.
func ValidateEstimatedHours(hours *float64) error {
	if hours == nil {
		return nil
	}
	if *hours <= 0 {
		return fmt.Errorf("оценка часов должна быть положительной")
	}
	if *hours > MaxEstimatedHours {
		return fmt.Errorf("оценка часов не может превышать %.0f", MaxEstimatedHours)
	}
	return nil
}

// ValidateRating проверяет оценку отзыва.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("рейтинг должен быть от %d до %d", MinRating, MaxRating)
	}
	return nil
}

// ValidateMessageContent проверяет текст сообщения.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}

// ValidateDisputeReason проверяет причину спора.
func ValidateDisputeReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("причина спора обязательна")
	}

	return ValidateLength("причина спора", reason, MinDisputeReasonLength, MaxDisputeReasonLength)
}

// ValidateDisputeDescription проверяет описание спора.
func ValidateDisputeDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("описание спора обязательно")
	}

	return ValidateLength("описание спора", description, MinDisputeDescriptionLength, MaxDisputeDescriptionLength)
}

// ValidateEvidence проверяет список ссылок на доказательства.
func ValidateEvidence(evidence []string) error {
	if len(evidence) > MaxDisputeEvidenceCount {
		return fmt.Errorf("количество доказательств не может превышать %d", MaxDisputeEvidenceCount)
	}

	for _, uri := range evidence {
		uri = strings.TrimSpace(uri)
		if uri == "" {
			return fmt.Errorf("ссылка на доказательство не может быть пустой")
		}
		if utf8.RuneCountInString(uri) > MaxEvidenceURILength {
			return fmt.Errorf("ссылка на доказательство не может быть длиннее %d символов", MaxEvidenceURILength)
		}
	}

	return nil
}

// ValidateSkills проверяет массив навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	seen := make(map[string]bool)
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return fmt.Errorf("навык не может быть пустым")
		}

		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}

		lower := strings.ToLower(skill)
		if seen[lower] {
			return fmt.Errorf("навык %q указан дважды", skill)
		}
		seen[lower] = true
	}

	return nil
}
