package fakeapi

// Seed inserts sample data for local development
func Seed(s *Store) {
	admin := s.AddUser("System", "Administrator")
	alice := s.AddUser("Alice", "Researcher")
	bob := s.AddUser("Bob", "Scientist")
	carol := s.AddUser("Carol", "Professor")
	_ = s.AddUser("David", "PostDoc")

	morning := s.AddEvent("Yoga", "14-10-2026 09:00 - 10:00")
	evening := s.AddEvent("Yoga", "14-10-2026 19:00 - 20:00")
	_ = s.AddEvent("Hiking", "18-10-2026 08:00 - 14:00")

	for _, u := range []int64{alice, bob} {
		_, _ = s.Register(morning, u)
	}
	_, _ = s.Register(evening, carol)

	staff := s.AddGroup("Staff")
	_ = s.AddMember(staff, admin)
	_ = s.AddMember(staff, alice)
}
