package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"inventario/internal/attachment"
	"inventario/internal/service"
)

var errInvalidBody = errors.New("invalid request body")

// productRequest holds the fields of a create or update request. Nil means not supplied.
type productRequest struct {
	name     *string
	quantity *int
	image    *attachment.Upload
	video    *attachment.Upload
	open     []io.Closer
}

// Close releases the opened multipart files.
func (r *productRequest) Close() {
	for _, f := range r.open {
		f.Close()
	}
}

func (r *productRequest) createInput() service.CreateInput {
	in := service.CreateInput{Quantity: r.quantity, Image: r.image, Video: r.video}
	if r.name != nil {
		in.Name = *r.name
	}
	return in
}

func (r *productRequest) updateInput() service.UpdateInput {
	return service.UpdateInput{Name: r.name, Quantity: r.quantity, Image: r.image, Video: r.video}
}

// parseProductRequest reads a JSON, urlencoded or multipart body. Empty form
// values count as not supplied; file parts are only read from multipart bodies.
func parseProductRequest(c *fiber.Ctx) (*productRequest, error) {
	ct, _, _ := strings.Cut(strings.ToLower(c.Get(fiber.HeaderContentType)), ";")
	ct = strings.TrimSpace(ct)

	switch ct {
	case fiber.MIMEMultipartForm:
		return parseMultipart(c)
	case fiber.MIMEApplicationForm:
		req := &productRequest{name: formString(c.FormValue("producto"))}
		q, err := parseQuantityString(c.FormValue("cantidad"))
		if err != nil {
			return nil, err
		}
		req.quantity = q
		return req, nil
	case "", fiber.MIMEApplicationJSON:
		return parseJSON(c.Body())
	default:
		return nil, errInvalidBody
	}
}

func parseJSON(body []byte) (*productRequest, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return &productRequest{}, nil
	}
	var raw struct {
		Name     *string         `json:"producto"`
		Quantity json.RawMessage `json:"cantidad"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errInvalidBody
	}
	req := &productRequest{name: raw.Name}
	if len(raw.Quantity) == 0 || string(raw.Quantity) == "null" {
		return req, nil
	}
	// number or a string holding one
	var n json.Number
	if err := json.Unmarshal(raw.Quantity, &n); err != nil {
		return nil, quantityError()
	}
	q, err := atoiQuantity(n.String())
	if err != nil {
		return nil, err
	}
	req.quantity = q
	return req, nil
}

func parseMultipart(c *fiber.Ctx) (*productRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errInvalidBody
	}
	req := &productRequest{
		name: formString(firstValue(form.Value["producto"])),
	}
	if req.quantity, err = parseQuantityString(firstValue(form.Value["cantidad"])); err != nil {
		return nil, err
	}

	for _, kind := range []attachment.Kind{attachment.KindImage, attachment.KindVideo} {
		fh := firstFile(form.File[string(kind)])
		if fh == nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			req.Close()
			return nil, errInvalidBody
		}
		req.open = append(req.open, f)
		up := &attachment.Upload{Kind: kind, Filename: fh.Filename, Size: fh.Size, Reader: f}
		if kind == attachment.KindImage {
			req.image = up
		} else {
			req.video = up
		}
	}
	return req, nil
}

func parseQuantityString(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	return atoiQuantity(v)
}

// atoiQuantity accepts integers that fit the 32-bit cantidad column.
func atoiQuantity(v string) (*int, error) {
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, &service.ValidationError{
				Field:   "cantidad",
				Message: fmt.Sprintf("cantidad must be between %d and %d", math.MinInt32, math.MaxInt32),
			}
		}
		return nil, quantityError()
	}
	q := int(n)
	return &q, nil
}

func quantityError() error {
	return &service.ValidationError{Field: "cantidad", Message: "cantidad must be an integer"}
}

func formString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func firstValue(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// firstFile skips the empty part browsers send for an untouched file input.
func firstFile(fs []*multipart.FileHeader) *multipart.FileHeader {
	if len(fs) == 0 || (fs[0].Filename == "" && fs[0].Size == 0) {
		return nil
	}
	return fs[0]
}

// parseID accepts positive integers only.
func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
