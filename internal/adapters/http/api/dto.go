package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/roster/internal/domain/model"
)

// maxBodyBytes caps create and update request bodies.
const maxBodyBytes = 1 << 16

// playerResponse is the wire shape of a player. Birthday is epoch milliseconds.
type playerResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Race           string `json:"race"`
	Profession     string `json:"profession"`
	Experience     int64  `json:"experience"`
	Level          int    `json:"level"`
	UntilNextLevel int64  `json:"untilNextLevel"`
	Birthday       int64  `json:"birthday"`
	Banned         bool   `json:"banned"`
}

func toResponse(p model.Player) playerResponse {
	return playerResponse{
		ID:             p.ID,
		Name:           p.Name,
		Title:          p.Title,
		Race:           string(p.Race),
		Profession:     string(p.Profession),
		Experience:     p.Experience,
		Level:          p.Level,
		UntilNextLevel: p.UntilNextLevel,
		Birthday:       p.BirthdayMillis(),
		Banned:         p.Banned,
	}
}

func toResponses(players []model.Player) []playerResponse {
	out := make([]playerResponse, len(players))
	for i, p := range players {
		out[i] = toResponse(p)
	}
	return out
}

// playerRequest is the create/update body. Absent fields stay nil.
type playerRequest struct {
	Name       *string `json:"name"`
	Title      *string `json:"title"`
	Race       *string `json:"race"`
	Profession *string `json:"profession"`
	Birthday   *int64  `json:"birthday"`
	Experience *int64  `json:"experience"`
	Banned     *bool   `json:"banned"`
}

// payload converts the request into a domain payload. Unknown race or
// profession names are validation failures.
func (req playerRequest) payload() (model.Payload, error) {
	pl := model.Payload{
		Name:       req.Name,
		Title:      req.Title,
		Birthday:   req.Birthday,
		Experience: req.Experience,
		Banned:     req.Banned,
	}
	var errs []error
	if req.Race != nil {
		r, err := model.ParseRace(*req.Race)
		if err != nil {
			errs = append(errs, &model.FieldError{Field: "race", Reason: err.Error()})
		} else {
			pl.Race = &r
		}
	}
	if req.Profession != nil {
		p, err := model.ParseProfession(*req.Profession)
		if err != nil {
			errs = append(errs, &model.FieldError{Field: "profession", Reason: err.Error()})
		} else {
			pl.Profession = &p
		}
	}
	return pl, errors.Join(errs...)
}

// decodePlayer reads a playerRequest from r's body.
func decodePlayer(r *http.Request) (model.Payload, error) {
	var req playerRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Payload{}, fmt.Errorf("%w: request body is required", ErrBadRequest)
		}
		return model.Payload{}, fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err)
	}
	return req.payload()
}
