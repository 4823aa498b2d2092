package element

// standardElements lists all 118 elements.
var standardElements = []Info{
	{Number: 1, Symbol: "H", Name: "Hydrogen", Mass: 1.008},
	{Number: 2, Symbol: "He", Name: "Helium", Mass: 4.0026},
	{Number: 3, Symbol: "Li", Name: "Lithium", Mass: 6.94},
	{Number: 4, Symbol: "Be", Name: "Beryllium", Mass: 9.0122},
	{Number: 5, Symbol: "B", Name: "Boron", Mass: 10.81},
	{Number: 6, Symbol: "C", Name: "Carbon", Mass: 12.011},
	{Number: 7, Symbol: "N", Name: "Nitrogen", Mass: 14.007},
	{Number: 8, Symbol: "O", Name: "Oxygen", Mass: 15.999},
	{Number: 9, Symbol: "F", Name: "Fluorine", Mass: 18.998},
	{Number: 10, Symbol: "Ne", Name: "Neon", Mass: 20.18},
	{Number: 11, Symbol: "Na", Name: "Sodium", Mass: 22.99},
	{Number: 12, Symbol: "Mg", Name: "Magnesium", Mass: 24.305},
	{Number: 13, Symbol: "Al", Name: "Aluminium", Mass: 26.982},
	{Number: 14, Symbol: "Si", Name: "Silicon", Mass: 28.085},
	{Number: 15, Symbol: "P", Name: "Phosphorus", Mass: 30.974},
	{Number: 16, Symbol: "S", Name: "Sulfur", Mass: 32.06},
	{Number: 17, Symbol: "Cl", Name: "Chlorine", Mass: 35.45},
	{Number: 18, Symbol: "Ar", Name: "Argon", Mass: 39.948},
	{Number: 19, Symbol: "K", Name: "Potassium", Mass: 39.098},
	{Number: 20, Symbol: "Ca", Name: "Calcium", Mass: 40.078},
	{Number: 21, Symbol: "Sc", Name: "Scandium", Mass: 44.956},
	{Number: 22, Symbol: "Ti", Name: "Titanium", Mass: 47.867},
	{Number: 23, Symbol: "V", Name: "Vanadium", Mass: 50.942},
	{Number: 24, Symbol: "Cr", Name: "Chromium", Mass: 51.996},
	{Number: 25, Symbol: "Mn", Name: "Manganese", Mass: 54.938},
	{Number: 26, Symbol: "Fe", Name: "Iron", Mass: 55.845},
	{Number: 27, Symbol: "Co", Name: "Cobalt", Mass: 58.933},
	{Number: 28, Symbol: "Ni", Name: "Nickel", Mass: 58.693},
	{Number: 29, Symbol: "Cu", Name: "Copper", Mass: 63.546},
	{Number: 30, Symbol: "Zn", Name: "Zinc", Mass: 65.38},
	{Number: 31, Symbol: "Ga", Name: "Gallium", Mass: 69.723},
	{Number: 32, Symbol: "Ge", Name: "Germanium", Mass: 72.63},
	{Number: 33, Symbol: "As", Name: "Arsenic", Mass: 74.922},
	{Number: 34, Symbol: "Se", Name: "Selenium", Mass: 78.971},
	{Number: 35, Symbol: "Br", Name: "Bromine", Mass: 79.904},
	{Number: 36, Symbol: "Kr", Name: "Krypton", Mass: 83.798},
	{Number: 37, Symbol: "Rb", Name: "Rubidium", Mass: 85.468},
	{Number: 38, Symbol: "Sr", Name: "Strontium", Mass: 87.62},
	{Number: 39, Symbol: "Y", Name: "Yttrium", Mass: 88.906},
	{Number: 40, Symbol: "Zr", Name: "Zirconium", Mass: 91.224},
	{Number: 41, Symbol: "Nb", Name: "Niobium", Mass: 92.906},
	{Number: 42, Symbol: "Mo", Name: "Molybdenum", Mass: 95.95},
	{Number: 43, Symbol: "Tc", Name: "Technetium", Mass: 98.0},
	{Number: 44, Symbol: "Ru", Name: "Ruthenium", Mass: 101.07},
	{Number: 45, Symbol: "Rh", Name: "Rhodium", Mass: 102.91},
	{Number: 46, Symbol: "Pd", Name: "Palladium", Mass: 106.42},
	{Number: 47, Symbol: "Ag", Name: "Silver", Mass: 107.87},
	{Number: 48, Symbol: "Cd", Name: "Cadmium", Mass: 112.41},
	{Number: 49, Symbol: "In", Name: "Indium", Mass: 114.82},
	{Number: 50, Symbol: "Sn", Name: "Tin", Mass: 118.71},
	{Number: 51, Symbol: "Sb", Name: "Antimony", Mass: 121.76},
	{Number: 52, Symbol: "Te", Name: "Tellurium", Mass: 127.6},
	{Number: 53, Symbol: "I", Name: "Iodine", Mass: 126.9},
	{Number: 54, Symbol: "Xe", Name: "Xenon", Mass: 131.29},
	{Number: 55, Symbol: "Cs", Name: "Caesium", Mass: 132.91},
	{Number: 56, Symbol: "Ba", Name: "Barium", Mass: 137.33},
	{Number: 57, Symbol: "La", Name: "Lanthanum", Mass: 138.91},
	{Number: 58, Symbol: "Ce", Name: "Cerium", Mass: 140.12},
	{Number: 59, Symbol: "Pr", Name: "Praseodymium", Mass: 140.91},
	{Number: 60, Symbol: "Nd", Name: "Neodymium", Mass: 144.24},
	{Number: 61, Symbol: "Pm", Name: "Promethium", Mass: 145.0},
	{Number: 62, Symbol: "Sm", Name: "Samarium", Mass: 150.36},
	{Number: 63, Symbol: "Eu", Name: "Europium", Mass: 151.96},
	{Number: 64, Symbol: "Gd", Name: "Gadolinium", Mass: 157.25},
	{Number: 65, Symbol: "Tb", Name: "Terbium", Mass: 158.93},
	{Number: 66, Symbol: "Dy", Name: "Dysprosium", Mass: 162.5},
	{Number: 67, Symbol: "Ho", Name: "Holmium", Mass: 164.93},
	{Number: 68, Symbol: "Er", Name: "Erbium", Mass: 167.26},
	{Number: 69, Symbol: "Tm", Name: "Thulium", Mass: 168.93},
	{Number: 70, Symbol: "Yb", Name: "Ytterbium", Mass: 173.05},
	{Number: 71, Symbol: "Lu", Name: "Lutetium", Mass: 174.97},
	{Number: 72, Symbol: "Hf", Name: "Hafnium", Mass: 178.49},
	{Number: 73, Symbol: "Ta", Name: "Tantalum", Mass: 180.95},
	{Number: 74, Symbol: "W", Name: "Tungsten", Mass: 183.84},
	{Number: 75, Symbol: "Re", Name: "Rhenium", Mass: 186.21},
	{Number: 76, Symbol: "Os", Name: "Osmium", Mass: 190.23},
	{Number: 77, Symbol: "Ir", Name: "Iridium", Mass: 192.22},
	{Number: 78, Symbol: "Pt", Name: "Platinum", Mass: 195.08},
	{Number: 79, Symbol: "Au", Name: "Gold", Mass: 196.97},
	{Number: 80, Symbol: "Hg", Name: "Mercury", Mass: 200.59},
	{Number: 81, Symbol: "Tl", Name: "Thallium", Mass: 204.38},
	{Number: 82, Symbol: "Pb", Name: "Lead", Mass: 207.2},
	{Number: 83, Symbol: "Bi", Name: "Bismuth", Mass: 208.98},
	{Number: 84, Symbol: "Po", Name: "Polonium", Mass: 209.0},
	{Number: 85, Symbol: "At", Name: "Astatine", Mass: 210.0},
	{Number: 86, Symbol: "Rn", Name: "Radon", Mass: 222.0},
	{Number: 87, Symbol: "Fr", Name: "Francium", Mass: 223.0},
	{Number: 88, Symbol: "Ra", Name: "Radium", Mass: 226.0},
	{Number: 89, Symbol: "Ac", Name: "Actinium", Mass: 227.0},
	{Number: 90, Symbol: "Th", Name: "Thorium", Mass: 232.04},
	{Number: 91, Symbol: "Pa", Name: "Protactinium", Mass: 231.04},
	{Number: 92, Symbol: "U", Name: "Uranium", Mass: 238.03},
	{Number: 93, Symbol: "Np", Name: "Neptunium", Mass: 237.0},
	{Number: 94, Symbol: "Pu", Name: "Plutonium", Mass: 244.0},
	{Number: 95, Symbol: "Am", Name: "Americium", Mass: 243.0},
	{Number: 96, Symbol: "Cm", Name: "Curium", Mass: 247.0},
	{Number: 97, Symbol: "Bk", Name: "Berkelium", Mass: 247.0},
	{Number: 98, Symbol: "Cf", Name: "Californium", Mass: 251.0},
	{Number: 99, Symbol: "Es", Name: "Einsteinium", Mass: 252.0},
	{Number: 100, Symbol: "Fm", Name: "Fermium", Mass: 257.0},
	{Number: 101, Symbol: "Md", Name: "Mendelevium", Mass: 258.0},
	{Number: 102, Symbol: "No", Name: "Nobelium", Mass: 259.0},
	{Number: 103, Symbol: "Lr", Name: "Lawrencium", Mass: 266.0},
	{Number: 104, Symbol: "Rf", Name: "Rutherfordium", Mass: 267.0},
	{Number: 105, Symbol: "Db", Name: "Dubnium", Mass: 268.0},
	{Number: 106, Symbol: "Sg", Name: "Seaborgium", Mass: 269.0},
	{Number: 107, Symbol: "Bh", Name: "Bohrium", Mass: 270.0},
	{Number: 108, Symbol: "Hs", Name: "Hassium", Mass: 277.0},
	{Number: 109, Symbol: "Mt", Name: "Meitnerium", Mass: 278.0},
	{Number: 110, Symbol: "Ds", Name: "Darmstadtium", Mass: 281.0},
	{Number: 111, Symbol: "Rg", Name: "Roentgenium", Mass: 282.0},
	{Number: 112, Symbol: "Cn", Name: "Copernicium", Mass: 285.0},
	{Number: 113, Symbol: "Nh", Name: "Nihonium", Mass: 286.0},
	{Number: 114, Symbol: "Fl", Name: "Flerovium", Mass: 289.0},
	{Number: 115, Symbol: "Mc", Name: "Moscovium", Mass: 290.0},
	{Number: 116, Symbol: "Lv", Name: "Livermorium", Mass: 293.0},
	{Number: 117, Symbol: "Ts", Name: "Tennessine", Mass: 294.0},
	{Number: 118, Symbol: "Og", Name: "Oganesson", Mass: 294.0},
}
