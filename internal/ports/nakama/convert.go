package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"omok/internal/ports"
)

var jsonOptions = protojson.MarshalOptions{EmitUnpopulated: true}

// encodeFields renders message fields as a JSON object.
func encodeFields(fields map[string]interface{}) ([]byte, error) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	payload, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}
	return jsonOptions.Marshal(payload)
}

// encodeMessage resolves the op code of msg and renders its body.
func encodeMessage(msg ports.Message) (int64, []byte, error) {
	opCode, ok := noticeOpCodes[msg.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("no op code for %q", msg.Kind)
	}
	data, err := encodeFields(msg.Fields)
	if err != nil {
		return 0, nil, err
	}
	return opCode, data, nil
}

// request is a decoded client message body.
type request struct {
	fields map[string]*structpb.Value
}

// decodeRequest parses a JSON object sent by a client. An empty body is an empty request.
func decodeRequest(data []byte) (request, error) {
	if len(data) == 0 {
		return request{}, nil
	}
	body := &structpb.Struct{}
	if err := protojson.Unmarshal(data, body); err != nil {
		return request{}, fmt.Errorf("invalid request body: %w", err)
	}
	return request{fields: body.GetFields()}, nil
}

func (r request) String(key string) string {
	return r.fields[key].GetStringValue()
}

// Int returns a numeric field and whether it was present.
func (r request) Int(key string) (int, bool) {
	v, ok := r.fields[key]
	if !ok {
		return 0, false
	}
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return 0, false
	}
	return int(v.GetNumberValue()), true
}
