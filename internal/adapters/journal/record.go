package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
)

// record is the on-disk shape of one journal line.
type record struct {
	Timestamp      string        `json:"timestamp"`
	DatosGenerales generalData   `json:"datos_generales"`
	Likert         likertAnswers `json:"likert"`
	Abiertas       openAnswers   `json:"abiertas"`
}

type generalData struct {
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Edad   int    `json:"edad"`
}

type openAnswers struct {
	Problemas   string `json:"problemas"`
	Ventajas    string `json:"ventajas"`
	OtrosJuegos string `json:"otros_juegos"`
}

// likertAnswers keeps item order on the wire; a map would sort item_10 before item_2.
type likertAnswers []entities.LikertAnswer

func (l likertAnswers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, answer := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(entities.LikertFieldName(answer.Index))
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(answer.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (l *likertAnswers) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	answers := make([]entities.LikertAnswer, 0, len(raw))
	for key, value := range raw {
		idx, err := strconv.Atoi(strings.TrimPrefix(key, "item_"))
		if err != nil || !strings.HasPrefix(key, "item_") || idx < 1 {
			return fmt.Errorf("unexpected likert key %q", key)
		}
		answers = append(answers, entities.LikertAnswer{Index: idx, Value: value})
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].Index < answers[j].Index })
	*l = answers
	return nil
}

func newRecord(s *entities.Submission) record {
	respondent := s.Respondent()
	open := s.Open()
	return record{
		Timestamp: s.FormattedTimestamp(),
		DatosGenerales: generalData{
			Nombre: respondent.Name,
			Correo: respondent.Email,
			Edad:   respondent.Age,
		},
		Likert: likertAnswers(s.Likert()),
		Abiertas: openAnswers{
			Problemas:   open.Problems,
			Ventajas:    open.Advantages,
			OtrosJuegos: open.OtherGames,
		},
	}
}

func (r record) toSubmission() (*entities.Submission, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", r.Timestamp, err)
	}
	return entities.NewSubmission(
		ts,
		entities.Respondent{
			Name:  r.DatosGenerales.Nombre,
			Email: r.DatosGenerales.Correo,
			Age:   r.DatosGenerales.Edad,
		},
		r.Likert,
		entities.OpenAnswers{
			Problems:   r.Abiertas.Problemas,
			Advantages: r.Abiertas.Ventajas,
			OtherGames: r.Abiertas.OtrosJuegos,
		},
	), nil
}

// encodeLine renders one record followed by the record separator.
func encodeLine(s *entities.Submission) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(newRecord(s)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalNoEscape(v string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
