package acmi

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "FileType=text/acmi/tacview\nFileVersion=2.1\n"

func collect(t *testing.T, p *Parser) ([]Record, error) {
	t.Helper()
	var records []Record
	for rec, err := range p.All() {
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func TestParser_MultiLineComments(t *testing.T) {
	input := header +
		"0,Comments=1\\\n" +
		"2\\\n" +
		"\\\n" +
		"3\n" +
		"0,Title=Test\n"

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "2.1", p.Version())

	records, err := collect(t, p)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		GlobalProperty{Property: Text{Key: KeyComments, Value: "1\n2\n\n3"}},
		GlobalProperty{Property: Text{Key: KeyTitle, Value: "Test"}},
	}, records)
}

func TestParser_Recording(t *testing.T) {
	input := "\ufeffFileType=text/acmi/tacview\r\n" +
		"FileVersion=2.2\r\n" +
		"0,ReferenceTime=2011-06-02T05:00:00Z\r\n" +
		"0,ReferenceLongitude=-129\r\n" +
		"0,ReferenceLatitude=43\r\n" +
		"// first frame\r\n" +
		"\r\n" +
		"#0\r\n" +
		"3000102,T=0.5|0.25|2000,Type=Air+FixedWing,Name=F-16C-52,Color=Blue\r\n" +
		"#12.5\r\n" +
		"3000102,T=||2100,IAS=250\r\n" +
		"0,Event=Destroyed|3000102|\r\n" +
		"-3000102\r\n"

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)

	records, err := collect(t, p)
	require.NoError(t, err)
	require.Len(t, records, 9)

	assert.Equal(t, GlobalProperty{Property: Number{Key: KeyReferenceLatitude, Value: 43}}, records[2])
	assert.Equal(t, Frame{Offset: 0}, records[3])
	assert.Equal(t, Update{ID: 0x3000102, Properties: []Property{
		Transform{Coords: Coords{Longitude: Float64(0.5), Latitude: Float64(0.25), Altitude: Float64(2000)}},
		ObjectType{Tags: []Tag{TagAir, TagFixedWing}},
		Text{Key: KeyName, Value: "F-16C-52"},
		ColorProperty{Color: ColorBlue},
	}}, records[4])
	assert.Equal(t, Frame{Offset: 12.5}, records[5])
	assert.Equal(t, Event{Kind: EventDestroyed, Params: []string{"3000102"}}, records[7])
	assert.Equal(t, Remove{ID: 0x3000102}, records[8])
}

func TestParser_FailFast(t *testing.T) {
	input := header + "#1\nabc\n#2\n"

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)

	rec, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, Frame{Offset: 1}, rec)

	rec, err = p.Next()
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrEOL)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 4, parseErr.Line)
	assert.Contains(t, err.Error(), "line 4")

	_, err = p.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestParser_AllStopsAfterError(t *testing.T) {
	input := header + "#1\n-nothex\n#2\n"

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)

	var yielded int
	var lastErr error
	for _, err := range p.All() {
		yielded++
		lastErr = err
	}
	assert.Equal(t, 2, yielded)
	assert.ErrorIs(t, lastErr, ErrInvalidID)
}

func TestParser_ErrorLineCountsContinuations(t *testing.T) {
	input := header + "0,Comments=a\\\nb\n0,Title\n"

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)

	_, err = collect(t, p)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 5, parseErr.Line)
	assert.ErrorIs(t, err, ErrMissingDelimiter)
}

func TestParser_AllCanBeAbandoned(t *testing.T) {
	input := header + "#1\n#2\n#3\n"

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)

	for rec := range p.All() {
		assert.Equal(t, Frame{Offset: 1}, rec)
		break
	}

	// The parser resumes where the consumer stopped.
	rec, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, Frame{Offset: 2}, rec)
}

func TestNewParser_Errors(t *testing.T) {
	_, err := NewParser(strings.NewReader("FileType=text/acmi/tacview\nFileVersion=3.0\n"))
	assert.ErrorIs(t, err, ErrInvalidVersion)

	_, err = NewParser(strings.NewReader("hello\n"))
	assert.ErrorIs(t, err, ErrInvalidFileType)

	_, err = NewParser(iotest.ErrReader(errors.New("unplugged")))
	assert.ErrorIs(t, err, ErrIO)
}

func TestParser_ReadErrorMidStream(t *testing.T) {
	r := io.MultiReader(strings.NewReader(header+"#1\n"), iotest.ErrReader(errors.New("unplugged")))

	p, err := NewParser(r)
	require.NoError(t, err)

	records, err := collect(t, p)
	assert.Equal(t, []Record{Frame{Offset: 1}}, records)
	assert.ErrorIs(t, err, ErrIO)
}

func TestParser_EmptyBody(t *testing.T) {
	p, err := NewParser(strings.NewReader(header))
	require.NoError(t, err)

	_, err = p.Next()
	assert.ErrorIs(t, err, io.EOF)
}
