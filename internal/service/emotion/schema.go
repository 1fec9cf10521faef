package emotion

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
)

// outputSchema 是 classifierOutput 的 JSON Schema，仅生成一次。
var outputSchema = sync.OnceValue(func() map[string]any {
	return generateSchema[classifierOutput]()
})

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schemaObj, err := schemaToMap(reflector.Reflect(v))
	if err != nil {
		panic(err)
	}
	ensureStrictCompliance(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureStrictCompliance 满足 OpenAI 严格模式：对象禁止额外字段，且所有属性均为必填。
func ensureStrictCompliance(schema map[string]any) {
	if schemaType, ok := schema["type"].(string); ok && schemaType == "object" {
		schema["additionalProperties"] = false

		if properties, ok := schema["properties"].(map[string]any); ok && len(properties) > 0 {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}

	if properties, ok := schema["properties"].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				ensureStrictCompliance(propMap)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		ensureStrictCompliance(items)
	}
}
