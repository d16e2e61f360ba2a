package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

const sampleExport = "[12/3/24, 9:05:33 p.m.] Ana López: Hola, quiero información\n" +
	"[12/3/24, 9:06:10 p.m.] Eva Ruiz: Claro, con gusto\n" +
	"¿Qué producto te interesa?\n" +
	"[13/3/24, 10:15:00 a.m.] Ana López: ‎<adjunto: IMG-0001.jpg>\n" +
	"[13/3/24, 12:00:00 p.m.] Ana López: El rojo por favor\n"

func TestParseExportBasic(t *testing.T) {
	msgs, err := ParseExport(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	first := msgs[0]
	assert.Equal(t, "Ana López", first.Sender)
	assert.Equal(t, "Hola, quiero información", first.Body)
	assert.Equal(t, domain.MessageTypeText, first.Type)
	assert.Equal(t, time.Date(2024, 3, 12, 21, 5, 33, 0, time.Local), first.Timestamp)
}

func TestParseExportContinuationLines(t *testing.T) {
	msgs, err := ParseExport(strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, "Claro, con gusto\n¿Qué producto te interesa?", msgs[1].Body)
}

func TestParseExportAttachment(t *testing.T) {
	msgs, err := ParseExport(strings.NewReader(sampleExport))
	require.NoError(t, err)

	attachment := msgs[2]
	assert.Equal(t, "IMG-0001.jpg", attachment.MediaFile)
	assert.Equal(t, domain.MessageTypeImage, attachment.Type)
	assert.Empty(t, attachment.Body)
}

func TestParseExportAMPMConversion(t *testing.T) {
	msgs, err := ParseExport(strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, 10, msgs[2].Timestamp.Hour())
	assert.Equal(t, 12, msgs[3].Timestamp.Hour())
}

func TestParseExportMidnight(t *testing.T) {
	line := "[1/1/25, 12:00:00 a.m.] Ana: feliz año\n"
	msgs, err := ParseExport(strings.NewReader(line))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, 0, msgs[0].Timestamp.Hour())
}

func TestParseExportSkipsSystemNotices(t *testing.T) {
	export := "[12/3/24, 9:00:00 p.m.] Los mensajes están cifrados de extremo a extremo\n" +
		"[12/3/24, 9:05:33 p.m.] Ana: hola\n"
	msgs, err := ParseExport(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Ana", msgs[0].Sender)
}

func TestParseExportFourDigitYear(t *testing.T) {
	line := "[5/7/2024, 1:30:00 p.m.] Ana: hola\n"
	msgs, err := ParseExport(strings.NewReader(line))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, 2024, msgs[0].Timestamp.Year())
	assert.Equal(t, 13, msgs[0].Timestamp.Hour())
}

func TestParseExportEmptyInput(t *testing.T) {
	msgs, err := ParseExport(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMediaTypeForFile(t *testing.T) {
	assert.Equal(t, domain.MessageTypeImage, MediaTypeForFile("foto.JPG"))
	assert.Equal(t, domain.MessageTypeSticker, MediaTypeForFile("sticker.webp"))
	assert.Equal(t, domain.MessageTypeVideo, MediaTypeForFile("clip.mp4"))
	assert.Equal(t, domain.MessageTypeAudio, MediaTypeForFile("nota.opus"))
	assert.Equal(t, domain.MessageTypeDocument, MediaTypeForFile("factura.pdf"))
}
