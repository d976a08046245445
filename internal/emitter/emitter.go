// Package emitter writes the Resolver's typed records to the per-kind JSON
// documents spec §4.F describes, optionally bundled into a single
// uncompressed zip.
package emitter

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/huskyhound/nonehound/internal/model"
)

// CollectorVersion is stamped into every file's meta.collectorversion.
const CollectorVersion = "1.0.0"

// schemaVersion is the fixed BloodHound-compatible schema version spec
// §4.F names.
const schemaVersion = 6

// meta is the per-file metadata block spec §4.F describes.
type meta struct {
	Methods          int    `json:"methods"`
	Type             string `json:"type"`
	Count            int    `json:"count"`
	Version          int    `json:"version"`
	CollectorVersion string `json:"collectorversion"`
}

// document is the {data, meta} envelope every emitted file wraps its
// records in.
type document struct {
	Data []interface{} `json:"data"`
	Meta meta          `json:"meta"`
}

// Error wraps a file-system failure writing the output directory or
// archive. Always terminal; no archive is produced on failure, per spec §7.
type Error struct {
	cause error
}

func (e Error) Error() string  { return fmt.Sprintf("emitter error: %v", e.cause) }
func (e Error) Terminal() bool { return true }
func (e Error) Unwrap() error  { return e.cause }

// Kind bundles one object kind's records with the plural name its file and
// meta.type use. Records must already be JSON-marshalable (each concrete
// model type satisfies this directly).
type Kind struct {
	Plural  string
	Records []interface{}
}

// Emit writes one JSON file per non-empty kind into outputDir, named
// "<timestamp>_<domain-lowercase-with-dashes>_<kind>.json", and, when
// archive is true, bundles them atomically into a single uncompressed zip
// instead of leaving the loose files behind.
func Emit(outputDir, domain, timestamp string, archive bool, kinds []Kind) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, Error{errors.Wrap(err, "creating output directory")}
	}

	domainSlug := strings.ToLower(strings.ReplaceAll(domain, ".", "-"))

	var files []bundleFile

	for _, k := range kinds {
		if len(k.Records) == 0 {
			continue
		}
		doc := document{
			Data: k.Records,
			Meta: meta{
				Type:             k.Plural,
				Count:            len(k.Records),
				Version:          schemaVersion,
				CollectorVersion: CollectorVersion,
			},
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			return nil, Error{errors.Wrapf(err, "marshaling %s", k.Plural)}
		}
		name := fmt.Sprintf("%s_%s_%s.json", timestamp, domainSlug, k.Plural)
		files = append(files, bundleFile{name: name, payload: payload})
	}

	var written []string
	if archive {
		bundleName := fmt.Sprintf("%s_%s_nonehound.zip", timestamp, domainSlug)
		bundlePath := filepath.Join(outputDir, bundleName)
		if err := writeBundle(bundlePath, files); err != nil {
			return nil, Error{err}
		}
		return []string{bundlePath}, nil
	}

	for _, f := range files {
		path := filepath.Join(outputDir, f.name)
		if err := os.WriteFile(path, f.payload, 0o644); err != nil {
			return nil, Error{errors.Wrapf(err, "writing %s", f.name)}
		}
		written = append(written, path)
	}
	return written, nil
}

type bundleFile struct {
	name    string
	payload []byte
}

// writeBundle writes every file into a single zip using the STORED
// (uncompressed) method, to a temporary path renamed into place once
// complete, so a failure never leaves a partial archive at bundlePath.
func writeBundle(bundlePath string, files []bundleFile) error {
	tmp := bundlePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "creating archive")
	}

	zw := zip.NewWriter(f)
	for _, file := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: file.name, Method: zip.Store})
		if err != nil {
			zw.Close()
			f.Close()
			os.Remove(tmp)
			return errors.Wrapf(err, "adding %s to archive", file.name)
		}
		if _, err := w.Write(file.payload); err != nil {
			zw.Close()
			f.Close()
			os.Remove(tmp)
			return errors.Wrapf(err, "writing %s into archive", file.name)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "closing archive")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "closing archive file")
	}
	return errors.Wrap(os.Rename(tmp, bundlePath), "renaming archive into place")
}

// KindsOf collects every typed record slice from the lookup tables'
// companion collections into the ordered Kind list Emit expects, skipping
// the kinds KindPlural has no file name for (ForeignSecurityPrincipal and
// Trust ride along inside other kinds' properties and are never emitted as
// their own file, per spec §4.F's enumerated kind list).
func KindsOf(
	users, groups, computers, ous, domains, gpos, containers []interface{},
	ntAuthStores, aiacas, rootcas, enterprisecas, certtemplates, issuancepolicies []interface{},
) []Kind {
	return []Kind{
		{model.KindPlural[model.KindUser], users},
		{model.KindPlural[model.KindGroup], groups},
		{model.KindPlural[model.KindComputer], computers},
		{model.KindPlural[model.KindOU], ous},
		{model.KindPlural[model.KindDomain], domains},
		{model.KindPlural[model.KindGPO], gpos},
		{model.KindPlural[model.KindContainer], containers},
		{model.KindPlural[model.KindNTAuthStore], ntAuthStores},
		{model.KindPlural[model.KindAIACA], aiacas},
		{model.KindPlural[model.KindRootCA], rootcas},
		{model.KindPlural[model.KindEnterpriseCA], enterprisecas},
		{model.KindPlural[model.KindCertTemplate], certtemplates},
		{model.KindPlural[model.KindIssuancePolicy], issuancepolicies},
	}
}
