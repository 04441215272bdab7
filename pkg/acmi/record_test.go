package acmi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
	}{
		{"remove", "-a1b2", Remove{ID: 0xa1b2}},
		{"frame", "#12.5", Frame{Offset: 12.5}},
		{"integer frame", "#0", Frame{Offset: 0}},
		{"comment", "// recorded by hand", nil},
		{"empty line", "", nil},
		{"global text", "0,Title=Test", GlobalProperty{Property: Text{Key: KeyTitle, Value: "Test"}}},
		{"global keeps commas", "0,Briefing=north, then south", GlobalProperty{Property: Text{Key: KeyBriefing, Value: "north, then south"}}},
		{
			"event with params and text",
			"0,Event=Message|3000102|Hello",
			Event{Kind: EventMessage, Params: []string{"3000102"}, Text: strPtr("Hello")},
		},
		{"event kind only", "0,Event=Bookmark", Event{Kind: EventBookmark}},
		{"event single segment is text", "0,Event=Bookmark|Fight's on", Event{Kind: EventBookmark, Text: strPtr("Fight's on")}},
		{"event empty trailer", "0,Event=Landed|1|2|", Event{Kind: EventLanded, Params: []string{"1", "2"}}},
		{"unknown event kind", "0,Event=Exploded|a|", Event{Kind: "Exploded", Params: []string{"a"}}},
		{"update without properties", "a1,", Update{ID: 0xa1}},
		{
			"update",
			`3000102,T=1|2|3,Name=F-16\, Viper,Flavour=x`,
			Update{ID: 0x3000102, Properties: []Property{
				Transform{Coords: Coords{Longitude: Float64(1), Latitude: Float64(2), Altitude: Float64(3)}},
				Text{Key: KeyName, Value: "F-16, Viper"},
				Unknown{Key: "Flavour", Value: "x"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecord_Errors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{"no comma", "abc", ErrEOL},
		{"bare global id", "0", ErrEOL},
		{"bad remove id", "-xyz", ErrInvalidID},
		{"empty remove id", "-", ErrInvalidID},
		{"bad frame", "#soon", ErrInvalidNumeric},
		{"bad update id", "zz,Name=x", ErrInvalidID},
		{"empty update id", ",Name=x", ErrInvalidID},
		{"zero update id", "00,Name=x", ErrInvalidID},
		{"global without equals", "0,Title", ErrMissingDelimiter},
		{"event without kind", "0,Event=|x", ErrInvalidEvent},
		{"empty event", "0,Event=", ErrInvalidEvent},
		{"bad property", "a1,IAS=fast", ErrInvalidNumeric},
		{"property without equals", "a1,Name=x,Pilot", ErrMissingDelimiter},
		{"bad reference latitude", "0,ReferenceLatitude=x", ErrInvalidNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.line)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{"remove", Remove{ID: 0xa1b2}, "-a1b2"},
		{"frame rounds to two places", Frame{Offset: 12.345}, "#12.35"},
		{"frame integer", Frame{Offset: 3}, "#3"},
		{"global", GlobalProperty{Property: Text{Key: KeyTitle, Value: "Test"}}, "0,Title=Test"},
		{"reference longitude", GlobalProperty{Property: Number{Key: KeyReferenceLongitude, Value: 12.123456789}}, "0,ReferenceLongitude=12.1234568"},
		{"multi-line comments", GlobalProperty{Property: Text{Key: KeyComments, Value: "1\n2"}}, "0,Comments=1\\\n2"},
		{"event", Event{Kind: EventMessage, Params: []string{"1"}, Text: strPtr("hi")}, "0,Event=Message|1|hi"},
		{"event without text", Event{Kind: EventLanded, Params: []string{"1"}}, "0,Event=Landed|1|"},
		{"update id in hex", Update{ID: 255, Properties: []Property{Text{Key: KeyName, Value: "a,b"}}}, `ff,Name=a\,b`},
		{"update without properties", Update{ID: 0x10}, "10,"},
		{
			"update with several properties",
			Update{ID: 0xa1, Properties: []Property{
				Transform{Coords: Coords{Longitude: Float64(1), Latitude: Float64(2), Altitude: Float64(3)}},
				ObjectType{Tags: []Tag{TagAir, TagFixedWing}},
				Indexed{Key: KeyFuelWeight, Index: 2, Value: 50},
			}},
			"a1,T=1|2|3,Type=Air+FixedWing,FuelWeight3=50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatRecord(tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRecord_Errors(t *testing.T) {
	_, err := FormatRecord(Update{ID: 0})
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = FormatRecord(Event{})
	require.ErrorIs(t, err, ErrInvalidEvent)

	_, err = FormatRecord(GlobalProperty{})
	require.Error(t, err)

	_, err = FormatRecord(nil)
	require.Error(t, err)
}

func TestFormatRecord_TrailingBackslash(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"global text", GlobalProperty{Property: Text{Key: KeyTitle, Value: `C:\`}}},
		{"global unknown", GlobalProperty{Property: Unknown{Key: "Mod", Value: `a\`}}},
		{"event text", Event{Kind: EventMessage, Params: []string{"a1"}, Text: strPtr(`x\`)}},
		{"last update field", Update{ID: 0xa1, Properties: []Property{Text{Key: KeyName, Value: `ends\`}}}},
		{"middle update field", Update{ID: 0xa1, Properties: []Property{
			Text{Key: KeyName, Value: `ends\`},
			Text{Key: KeyPilot, Value: "Doe"},
		}}},
		{"unknown update field", Update{ID: 0xa1, Properties: []Property{Unknown{Key: "Flavour", Value: `\`}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatRecord(tt.record)
			require.ErrorIs(t, err, ErrTrailingBackslash)
			assert.Empty(t, got)
		})
	}
}

func TestParseRecord_ZeroUpdateIDMatchesFormat(t *testing.T) {
	_, err := FormatRecord(Update{ID: 0, Properties: []Property{Text{Key: KeyName, Value: "x"}}})
	require.ErrorIs(t, err, ErrInvalidID)

	got, err := ParseRecord("00,Name=x")
	require.ErrorIs(t, err, ErrInvalidID)
	assert.Nil(t, got)
}

func TestEvent_ObjectIDs(t *testing.T) {
	ev := Event{Kind: EventDestroyed, Params: []string{"a1", "not-an-id", "3000102"}}
	assert.Equal(t, []uint64{0xa1, 0x3000102}, ev.ObjectIDs())
}

func TestFrame_Duration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, Frame{Offset: 1.5}.Duration())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 12.35, Round(12.345, 2))
	assert.Equal(t, -12.35, Round(-12.345, 2))
	assert.Equal(t, 1.0, Round(0.999, 2))
	assert.Equal(t, 41.6251307, Round(41.62513071, 7))
}
