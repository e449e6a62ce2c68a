package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/forcebridge/relayer/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
	// rawMark flags a var written without quotes, its value keeps the type of the referenced value
	rawMark = ":raw"
)

var (
	ErrCycleVars                 = fmt.Errorf("cycle vars")
	ErrMissingVars               = fmt.Errorf("missing vars")
	ErrUnsupportedConfigFileType = fmt.Errorf("unsupported config file type")

	unquotedVarRe = regexp.MustCompile(`=\s*\{\{([^}:"]+)\}\}`)
)

type FileData struct {
	Name    string
	Content string
}

// ConfigRender merges TOML files, the later ones overriding the former, and resolves the {{Var}}
// references of the result. A var is looked up first in the environment, as <prefix>_<Var> with
// dots replaced by underscores, and then among the keys of the merged files
type ConfigRender struct {
	FilesData []FileData
	// LookupEnvFunc resolves environment variables, typically os.LookupEnv
	LookupEnvFunc func(key string) (string, bool)
	EnvPrefix     string
}

func NewConfigRender(filesData []FileData, envPrefix string) *ConfigRender {
	return &ConfigRender{
		FilesData:     filesData,
		LookupEnvFunc: os.LookupEnv,
		EnvPrefix:     envPrefix,
	}
}

// Render returns the merged TOML with every var resolved
func (c *ConfigRender) Render() (string, error) {
	k, err := c.merge()
	if err != nil {
		return "", err
	}
	if err := c.resolve(k); err != nil {
		return "", err
	}
	out, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return string(out), nil
}

func (c *ConfigRender) merge() (*koanf.Koanf, error) {
	k := koanf.New(".")
	for _, data := range c.FilesData {
		content := unquotedVarRe.ReplaceAllString(data.Content, `= "{{${1}`+rawMark+`}}"`)
		if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
			log.Errorf("error loading file %s. Err:%v", data.Name, err)
			return nil, fmt.Errorf("fail to load file %s as toml. Err: %w", data.Name, err)
		}
	}
	return k, nil
}

// resolve substitutes vars until no value changes. Values still holding vars then reference
// either an undefined var or, if every var is defined, each other
func (c *ConfigRender) resolve(k *koanf.Koanf) error {
	for {
		changed := false
		for key, value := range k.All() {
			resolved, ok := c.resolveValue(k, value)
			if ok {
				if err := k.Set(key, resolved); err != nil {
					return fmt.Errorf("error setting %s: %w", key, err)
				}
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	var missing, pending []string
	for key, value := range k.All() {
		for _, tag := range varsIn(value) {
			pending = append(pending, key)
			if _, ok := c.lookup(k, tag); !ok {
				missing = append(missing, tag)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing vars: %v. Err: %w", missing, ErrMissingVars)
	}
	if len(pending) > 0 {
		sort.Strings(pending)
		return fmt.Errorf("not resolved cycle vars on %v. Err: %w", pending, ErrCycleVars)
	}
	return nil
}

// resolveValue returns the value with its vars substituted, false if nothing could be substituted
func (c *ConfigRender) resolveValue(k *koanf.Koanf, value interface{}) (interface{}, bool) {
	switch v := value.(type) {
	case string:
		return c.resolveString(k, v)
	case []interface{}:
		changed := false
		out := make([]interface{}, len(v))
		for i, item := range v {
			var ok bool
			if out[i], ok = c.resolveValue(k, item); ok {
				changed = true
			} else {
				out[i] = item
			}
		}
		return out, changed
	case map[string]interface{}:
		changed := false
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			var ok bool
			if out[key], ok = c.resolveValue(k, item); ok {
				changed = true
			} else {
				out[key] = item
			}
		}
		return out, changed
	default:
		return value, false
	}
}

func (c *ConfigRender) resolveString(k *koanf.Koanf, s string) (interface{}, bool) {
	if !strings.Contains(s, startTag) {
		return s, false
	}
	// a whole raw var takes the referenced value as is
	if strings.HasPrefix(s, startTag) && strings.HasSuffix(s, rawMark+endTag) && strings.Count(s, startTag) == 1 {
		value, ok := c.lookup(k, s[len(startTag):len(s)-len(rawMark+endTag)])
		if !ok || len(varsIn(value)) > 0 {
			return s, false
		}
		if str, isString := value.(string); isString {
			return parseScalar(str), true
		}
		return value, true
	}
	tpl, err := fasttemplate.NewTemplate(s, startTag, endTag)
	if err != nil {
		return s, false
	}
	changed := false
	out := tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		value, ok := c.lookup(k, strings.TrimSuffix(tag, rawMark))
		if !ok || len(varsIn(value)) > 0 {
			return w.Write([]byte(startTag + tag + endTag))
		}
		changed = true
		return w.Write([]byte(fmt.Sprintf("%v", value)))
	})
	return out, changed
}

func (c *ConfigRender) lookup(k *koanf.Koanf, tag string) (interface{}, bool) {
	envKey := c.EnvPrefix + "_" + strings.ReplaceAll(tag, ".", "_")
	if v, ok := c.LookupEnvFunc(envKey); ok {
		return v, true
	}
	if !k.Exists(tag) {
		return nil, false
	}
	return k.Get(tag), true
}

// varsIn returns the vars referenced by value
func varsIn(value interface{}) []string {
	var vars []string
	switch v := value.(type) {
	case string:
		tpl, err := fasttemplate.NewTemplate(v, startTag, endTag)
		if err != nil {
			return nil
		}
		tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
			vars = append(vars, strings.TrimSuffix(tag, rawMark))
			return 0, nil
		})
	case []interface{}:
		for _, item := range v {
			vars = append(vars, varsIn(item)...)
		}
	case map[string]interface{}:
		for _, item := range v {
			vars = append(vars, varsIn(item)...)
		}
	}
	return vars
}

// parseScalar types a value read from the environment for an unquoted var
func parseScalar(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func readFileToString(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser())
		if err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
