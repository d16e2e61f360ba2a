package importer

import (
	"bufio"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// ParsedMessage is one message recovered from a WhatsApp chat export.
type ParsedMessage struct {
	Timestamp time.Time
	Sender    string
	Body      string
	MediaFile string
	Type      domain.MessageType
}

// Export header: [31/12/24, 9:05:33 p.m.] Nombre: texto
var headerRe = regexp.MustCompile(
	`^\[(\d{1,2})/(\d{1,2})/(\d{2,4}),\s*(\d{1,2}):(\d{2}):(\d{2})\s*([ap])\.?\s?m\.?\]\s*(.*)$`)

var attachmentRe = regexp.MustCompile(`<(?:adjunto|attached):\s*(.+?)>`)

// ParseExport reads a WhatsApp text export and returns its messages in file
// order. Lines that do not start a new entry are continuations of the
// previous message body. System notices (entries without a "sender: body"
// form) are skipped.
func ParseExport(r io.Reader) ([]ParsedMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var messages []ParsedMessage
	for scanner.Scan() {
		line := cleanLine(scanner.Text())

		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			// Continuation of the previous message body.
			if len(messages) > 0 && line != "" {
				last := &messages[len(messages)-1]
				last.Body = strings.TrimSpace(last.Body + "\n" + line)
			}
			continue
		}

		ts, ok := parseTimestamp(m)
		if !ok {
			continue
		}

		rest := m[8]
		sender, body, ok := splitSender(rest)
		if !ok {
			// Group notices and encryption banners have no sender.
			continue
		}

		msg := ParsedMessage{
			Timestamp: ts,
			Sender:    sender,
			Type:      domain.MessageTypeText,
		}
		if am := attachmentRe.FindStringSubmatch(body); am != nil {
			msg.MediaFile = strings.TrimSpace(am[1])
			msg.Type = MediaTypeForFile(msg.MediaFile)
			body = strings.TrimSpace(attachmentRe.ReplaceAllString(body, ""))
		}
		msg.Body = body
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// cleanLine strips the narrow and non-breaking spaces WhatsApp inserts
// around the am/pm marker, plus the LTR mark some exports prepend.
func cleanLine(line string) string {
	replacer := strings.NewReplacer(
		" ", " ",
		" ", " ",
		" ", " ",
		"‎", "",
	)
	return strings.TrimSpace(replacer.Replace(line))
}

func parseTimestamp(m []string) (time.Time, bool) {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])

	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 12 {
		return time.Time{}, false
	}
	if m[7] == "p" && hour != 12 {
		hour += 12
	}
	if m[7] == "a" && hour == 12 {
		hour = 0
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true
}

func splitSender(rest string) (sender, body string, ok bool) {
	idx := strings.Index(rest, ": ")
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+2:]), true
}

// MediaTypeForFile maps an exported attachment filename to a message type by
// extension. Unknown extensions become documents.
func MediaTypeForFile(filename string) domain.MessageType {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return domain.MessageTypeImage
	case ".webp":
		return domain.MessageTypeSticker
	case ".mp4", ".mov", ".3gp":
		return domain.MessageTypeVideo
	case ".opus", ".ogg", ".mp3", ".m4a", ".aac":
		return domain.MessageTypeAudio
	default:
		return domain.MessageTypeDocument
	}
}
