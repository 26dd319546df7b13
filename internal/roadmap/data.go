package roadmap

func init() {
	g = buildGraph(defaultSections)
}

var defaultSections = []Section{
	{
		Title: "Principiante",
		Nodes: []Node{
			{ID: "c1", Type: NodeConcept, Title: "Introducción a Triángulos Rectángulos", Topic: "Triángulos Rectángulos"},
			{ID: "p1", Type: NodePractice, Title: "Práctica: Teorema de Pitágoras", Topic: "Teorema de Pitágoras", Requires: []string{"c1"}, RequiredScore: 60},
			{ID: "c2", Type: NodeConcept, Title: "SOHCAHTOA", Topic: "SOHCAHTOA (Seno, Coseno, Tangente)", Requires: []string{"p1"}},
			{ID: "p2", Type: NodePractice, Title: "Práctica: Encontrar Lados Faltantes", Topic: "Encontrar Lados Faltantes usando SOHCAHTOA", Requires: []string{"c2"}, RequiredScore: 60},
		},
	},
	{
		Title: "Intermedio",
		Nodes: []Node{
			{ID: "c3", Type: NodeConcept, Title: "Funciones Trigonométricas Inversas", Topic: "Funciones Trigonométricas Inversas", Requires: []string{"p2"}},
			{ID: "p3", Type: NodePractice, Title: "Práctica: Encontrar Ángulos Faltantes", Topic: "Encontrar Ángulos Faltantes usando funciones inversas", Requires: []string{"c3"}, RequiredScore: 80},
			{ID: "c4", Type: NodeConcept, Title: "Introducción al Círculo Unitario", Topic: "El Círculo Unitario", Requires: []string{"p3"}},
			{ID: "p4", Type: NodePractice, Title: "Práctica: Círculo Unitario", Topic: "Coordenadas en el Círculo Unitario", Requires: []string{"c4"}, RequiredScore: 80},
			{ID: "g1", Type: NodeGame, Title: "Juego: Disparador de Ángulos", Topic: "Juego de Ángulos", Requires: []string{"p4"}, RequiredScore: 5000},
		},
	},
	{
		Title: "Avanzado",
		Nodes: []Node{
			{ID: "c5", Type: NodeConcept, Title: "Leyes de Senos y Cosenos", Topic: "Leyes de Senos y Cosenos", Requires: []string{"g1"}},
			{ID: "p5", Type: NodePractice, Title: "Práctica: Aplicando Leyes", Topic: "Problemas con Ley de Senos y Cosenos", Requires: []string{"c5"}, RequiredScore: 80},
			{ID: "pg1", Type: NodePlayground, Title: "Laboratorio de Trigonometría", Topic: "Laboratorio Interactivo del Círculo Unitario", Requires: []string{"p5"}},
			{ID: "g2", Type: NodeGame, Title: "Juego: Disparador de Ángulos Avanzado", Topic: "Juego de Ángulos Avanzado", Requires: []string{"pg1"}, RequiredScore: 10000},
		},
	},
}
