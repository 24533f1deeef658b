package store

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"datakit/pkg/config"
	"datakit/pkg/dataset"
	"datakit/pkg/frame"
)

// The payload is a JSON document with per-cell kind tags, so cells keep
// their concrete Go types across a save/load round trip.

type payloadDoc struct {
	Columns    []columnDoc     `json:"columns"`
	Metadata   []string        `json:"metadata"`
	Features   []string        `json:"features"`
	Operations []operationDoc  `json:"operations"`
	Settings   config.Settings `json:"settings"`
}

type columnDoc struct {
	Name  string    `json:"name"`
	Dtype string    `json:"dtype"`
	Cells []cellDoc `json:"cells"`
}

type cellDoc struct {
	K string `json:"k"`
	V string `json:"v,omitempty"`
}

type operationDoc struct {
	Type          string         `json:"type"`
	Columns       []string       `json:"columns"`
	Derived       []string       `json:"derived"`
	EncoderID     string         `json:"encoder_id,omitempty"`
	EncodedValues map[int]string `json:"encoded_values,omitempty"`
}

func encodeDataset(ds *dataset.Dataset) ([]byte, error) {
	fr := ds.Frame()
	doc := payloadDoc{
		Metadata: ds.MetadataColumns().Sorted(),
		Features: ds.FeatureColumns().Sorted(),
		Settings: ds.Settings(),
	}
	for _, name := range fr.ColumnNames() {
		col, _ := fr.Column(name)
		cells := make([]cellDoc, col.Len())
		for i, v := range col.Values() {
			cell, err := encodeCell(v)
			if err != nil {
				return nil, errors.Wrapf(err, "store: column %q row %d", name, i)
			}
			cells[i] = cell
		}
		doc.Columns = append(doc.Columns, columnDoc{
			Name:  name,
			Dtype: string(col.Dtype()),
			Cells: cells,
		})
	}
	for _, op := range ds.OperationLog() {
		doc.Operations = append(doc.Operations, operationDoc{
			Type:          string(op.Type),
			Columns:       op.Columns,
			Derived:       op.DerivedColumns,
			EncoderID:     op.EncoderID,
			EncodedValues: op.EncodedValues,
		})
	}
	return json.Marshal(doc)
}

func decodeDataset(payload []byte) (*dataset.Dataset, error) {
	var doc payloadDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.Wrap(err, "store: decoding payload")
	}

	fr := frame.New()
	for _, cd := range doc.Columns {
		vals := make([]any, len(cd.Cells))
		for i, cell := range cd.Cells {
			v, err := decodeCell(cell)
			if err != nil {
				return nil, errors.Wrapf(err, "store: column %q row %d", cd.Name, i)
			}
			vals[i] = v
		}
		if err := fr.AddColumn(cd.Name, vals); err != nil {
			return nil, err
		}
		col, _ := fr.Column(cd.Name)
		col.SetDtype(frame.Dtype(cd.Dtype))
	}

	settings := doc.Settings
	if settings.CategoricalThreshold == 0 {
		settings = config.Default()
	}
	ds := dataset.New(fr,
		dataset.WithMetadataColumns(doc.Metadata...),
		dataset.WithFeatureColumns(doc.Features...),
		dataset.WithSettings(settings),
	)
	for _, od := range doc.Operations {
		ds.AddOperation(dataset.Operation{
			Type:           dataset.OpType(od.Type),
			Columns:        od.Columns,
			DerivedColumns: od.Derived,
			EncoderID:      od.EncoderID,
			EncodedValues:  od.EncodedValues,
		})
	}
	return ds, nil
}

func encodeCell(v any) (cellDoc, error) {
	switch x := v.(type) {
	case nil:
		return cellDoc{K: "na"}, nil
	case bool:
		return cellDoc{K: "bool", V: strconv.FormatBool(x)}, nil
	case int:
		return cellDoc{K: "int", V: strconv.Itoa(x)}, nil
	case int32:
		return cellDoc{K: "int", V: strconv.FormatInt(int64(x), 10)}, nil
	case int64:
		return cellDoc{K: "int", V: strconv.FormatInt(x, 10)}, nil
	case float32:
		return cellDoc{K: "float", V: strconv.FormatFloat(float64(x), 'g', -1, 64)}, nil
	case float64:
		return cellDoc{K: "float", V: strconv.FormatFloat(x, 'g', -1, 64)}, nil
	case decimal.Decimal:
		return cellDoc{K: "decimal", V: x.String()}, nil
	case complex64:
		return cellDoc{K: "complex", V: strconv.FormatComplex(complex128(x), 'g', -1, 128)}, nil
	case complex128:
		return cellDoc{K: "complex", V: strconv.FormatComplex(x, 'g', -1, 128)}, nil
	case string:
		return cellDoc{K: "string", V: x}, nil
	case []byte:
		return cellDoc{K: "bytes", V: base64.StdEncoding.EncodeToString(x)}, nil
	case time.Time:
		return cellDoc{K: "time", V: x.Format(time.RFC3339Nano)}, nil
	case time.Duration:
		return cellDoc{K: "duration", V: x.String()}, nil
	default:
		return cellDoc{}, errors.Newf("unsupported cell type %T", v)
	}
}

func decodeCell(c cellDoc) (any, error) {
	switch c.K {
	case "na":
		return nil, nil
	case "bool":
		return strconv.ParseBool(c.V)
	case "int":
		return strconv.ParseInt(c.V, 10, 64)
	case "float":
		return strconv.ParseFloat(c.V, 64)
	case "decimal":
		return decimal.NewFromString(c.V)
	case "complex":
		return strconv.ParseComplex(c.V, 128)
	case "string":
		return c.V, nil
	case "bytes":
		return base64.StdEncoding.DecodeString(c.V)
	case "time":
		return time.Parse(time.RFC3339Nano, c.V)
	case "duration":
		return time.ParseDuration(c.V)
	default:
		return nil, errors.Newf("unsupported cell kind %q", c.K)
	}
}
