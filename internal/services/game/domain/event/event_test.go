package event

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		event Tag
		want  bool
	}{
		{
			name:  "valid tag",
			event: Tag{RoomID: "room-1", ID: "evt-1", Type: TypeTag, HunterUID: "hunter", VictimUID: "victim"},
			want:  true,
		},
		{
			name:  "wrong type",
			event: Tag{RoomID: "room-1", ID: "evt-1", Type: "ping", HunterUID: "hunter", VictimUID: "victim"},
			want:  false,
		},
		{
			name:  "empty type",
			event: Tag{RoomID: "room-1", ID: "evt-1", HunterUID: "hunter", VictimUID: "victim"},
			want:  false,
		},
		{
			name:  "missing hunter",
			event: Tag{RoomID: "room-1", ID: "evt-1", Type: TypeTag, VictimUID: "victim"},
			want:  false,
		},
		{
			name:  "missing victim",
			event: Tag{RoomID: "room-1", ID: "evt-1", Type: TypeTag, HunterUID: "hunter"},
			want:  false,
		},
		{
			name:  "blank victim",
			event: Tag{RoomID: "room-1", ID: "evt-1", Type: TypeTag, HunterUID: "hunter", VictimUID: "  "},
			want:  false,
		},
		{
			name:  "self tag",
			event: Tag{RoomID: "room-1", ID: "evt-1", Type: TypeTag, HunterUID: "hunter", VictimUID: "hunter"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Validate(); got != tt.want {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}
