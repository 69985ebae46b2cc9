package harness

import (
	"encoding/json"
	"strings"
	"text/template"

	"codeduel/internal/common"
	"codeduel/internal/domain/catalog"
	"codeduel/internal/domain/model"
)

// Builder renders a self-contained Python script: the submitted source
// verbatim, followed by a driver that runs it against the problem's test
// vectors. One template serves every problem; the catalog entry supplies the
// function name, argument order, vectors, and comparator.
type Builder struct {
	catalog *catalog.Catalog
}

func NewBuilder(c *catalog.Catalog) *Builder {
	return &Builder{catalog: c}
}

type templateData struct {
	UserSource  string
	FuncName    string
	Comparator  model.Comparator
	ParamsJSON  string
	VectorsJSON string
	Marker      string
}

func (b *Builder) Build(problemID int, userSource string) (string, error) {
	p, err := b.catalog.Get(problemID)
	if err != nil {
		return "", common.Errorf("build harness: %w", err)
	}

	paramsJSON, err := json.Marshal(p.Params)
	if err != nil {
		return "", common.Errorf("build harness: encode params: %w", err)
	}
	vectorsJSON, err := json.Marshal(p.TestVectors)
	if err != nil {
		return "", common.Errorf("build harness: encode vectors: %w", err)
	}

	var sb strings.Builder
	data := templateData{
		UserSource:  userSource,
		FuncName:    p.FuncName,
		Comparator:  p.Comparator,
		ParamsJSON:  string(paramsJSON),
		VectorsJSON: string(vectorsJSON),
		Marker:      model.RecordMarker,
	}
	if err := driverTemplate.Execute(&sb, data); err != nil {
		return "", common.Errorf("build harness: render driver: %w", err)
	}
	return sb.String(), nil
}

// The driver wraps every test in its own try/except, so one crashing test
// never aborts the rest. Record fields are pipe-delimited; _clean strips
// pipes and newlines from interpolated values to keep each record on one
// line.
var driverTemplate = template.Must(template.New("driver").Parse(`{{.UserSource}}

import json as _json

_PARAMS = _json.loads(r'''{{.ParamsJSON}}''')
_VECTORS = _json.loads(r'''{{.VectorsJSON}}''')


def _clean(v):
    return str(v).replace("|", "/").replace("\n", " ")


def _cmp_exact(got, exp):
    return got == exp


def _cmp_index_pair(got, exp):
    try:
        got = list(got)
        return len(got) == 2 and sorted(got) == sorted(exp)
    except Exception:
        return False


def _cmp_boolean(got, exp):
    return isinstance(got, bool) and got == exp


_COMPARE = _cmp_{{.Comparator}}

if __name__ == "__main__":
    for _i, _vec in enumerate(_VECTORS, 1):
        try:
            _got = {{.FuncName}}(*[_vec["inputs"][_p] for _p in _PARAMS])
            _verdict = "PASS" if _COMPARE(_got, _vec["expected"]) else "FAIL"
            _detail = f"got={_clean(repr(_got))} expected={_clean(repr(_vec['expected']))}"
            print(f"Test {_i}: {_verdict} ({_detail})")
            print(f"{{.Marker}}|{_i}|{_verdict}|{_detail}")
        except Exception as _e:
            print(f"Test {_i}: ERROR ({_clean(_e)})")
            print(f"{{.Marker}}|{_i}|ERROR|{_clean(_e)}")
`))
