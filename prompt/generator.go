package prompt

import (
	"fmt"
	"reflect"
	"strings"
)

// GenerateStructuredPrompt creates an instruction prompt asking the model to
// produce type T as a fenced YAML document. It analyzes the struct fields,
// yaml tags, and description tags to build the instructions.
func GenerateStructuredPrompt[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return fmt.Sprintf("Please format the output as a valid %s value.", t.Name())
	}

	var builder strings.Builder
	builder.WriteString("Return the result as YAML inside a fenced code block, with the following structure:\n\n")
	builder.WriteString("```yaml\n")
	writeYamlStructure(t, &builder, 0)
	builder.WriteString("```\n\n")

	builder.WriteString("Field descriptions:\n")
	writeFieldDescriptions(t, &builder, "")

	builder.WriteString("\nFill every field from the available information. Leave optional fields empty when they cannot be determined.")

	return builder.String()
}

// writeYamlStructure writes the YAML structure representation
func writeYamlStructure(t reflect.Type, builder *strings.Builder, indent int) {
	indentStr := strings.Repeat("  ", indent)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		yamlTag := yamlFieldName(field)
		if yamlTag == "-" {
			continue
		}

		builder.WriteString(fmt.Sprintf("%s%s: ", indentStr, yamlTag))

		fieldType := field.Type
		if fieldType.Kind() == reflect.Ptr {
			fieldType = fieldType.Elem()
		}

		switch fieldType.Kind() {
		case reflect.Struct:
			builder.WriteString("\n")
			writeYamlStructure(fieldType, builder, indent+1)
		case reflect.Slice:
			elemType := fieldType.Elem()
			if elemType.Kind() == reflect.Ptr {
				elemType = elemType.Elem()
			}
			if elemType.Kind() == reflect.Struct {
				builder.WriteString("\n")
				builder.WriteString(fmt.Sprintf("%s  - \n", indentStr))
				writeYamlStructure(elemType, builder, indent+2)
			} else {
				builder.WriteString(fmt.Sprintf("[] # array of %s\n", elemType.Kind()))
			}
		default:
			builder.WriteString(fmt.Sprintf("\"\" # %s\n", fieldType.Kind()))
		}
	}
}

// writeFieldDescriptions writes detailed field descriptions
func writeFieldDescriptions(t reflect.Type, builder *strings.Builder, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		fieldName := yamlFieldName(field)
		if fieldName == "-" {
			continue
		}

		fullFieldName := fieldName
		if prefix != "" {
			fullFieldName = prefix + "." + fieldName
		}

		description := field.Tag.Get("description")
		if description == "" {
			description = fmt.Sprintf("Field of type %s", field.Type.String())
		}

		builder.WriteString(fmt.Sprintf("- %s: %s\n", fullFieldName, description))

		fieldType := field.Type
		if fieldType.Kind() == reflect.Ptr {
			fieldType = fieldType.Elem()
		}

		if fieldType.Kind() == reflect.Struct {
			writeFieldDescriptions(fieldType, builder, fullFieldName)
		} else if fieldType.Kind() == reflect.Slice {
			elemType := fieldType.Elem()
			if elemType.Kind() == reflect.Ptr {
				elemType = elemType.Elem()
			}
			if elemType.Kind() == reflect.Struct {
				writeFieldDescriptions(elemType, builder, fullFieldName+"[]")
			}
		}
	}
}

// yamlFieldName extracts the yaml field name from the struct tag, falling
// back to the lowercased field name.
func yamlFieldName(field reflect.StructField) string {
	yamlTag := field.Tag.Get("yaml")
	if yamlTag == "" {
		return strings.ToLower(field.Name)
	}

	// Handle yaml tag options like "name,omitempty"
	parts := strings.Split(yamlTag, ",")
	if parts[0] == "" {
		return strings.ToLower(field.Name)
	}

	return parts[0]
}
