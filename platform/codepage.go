/*
Copyright (C) 2019-2021 Andreas T Jonsson

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package platform

// codePage437 maps console bytes to the glyphs of the original IBM PC
// character set.
var codePage437 = [256]rune{
	0x0000, // NULL
	0x263A, // вҳә
	0x263B, // вҳ»
	0x2665, // вҷҘ
	0x2666, // вҷҰ
	0x2663, // вҷЈ
	0x2660, // вҷ 
	0x2022, // вҖў
	0x25D8, // в—ҳ
	0x25CB, // в—Ӣ
	0x25D9, // в—ҷ
	0x2642, // вҷӮ
	0x2640, // вҷҖ
	0x266A, // вҷӘ
	0x266B, // вҷ«
	0x263C, // вҳј
	0x25BA, // в–ә
	0x25C4, // в—„
	0x2195, // вҶ•
	0x203C, // вҖј
	0x00B6, // В¶
	0x00A7, // В§
	0x25AC, // в–¬
	0x21A8, // вҶЁ
	0x2191, // вҶ‘
	0x2193, // вҶ“
	0x2192, // вҶ’
	0x2190, // вҶҗ
	0x221F, // вҲҹ
	0x2194, // вҶ”
	0x25B2, // в–І
	0x25BC, // в–ј
	' ',
	'!',
	'"',
	'#',
	'$',
	'%',
	'&',
	0x0027, // '
	'(',
	')',
	'*',
	'+',
	',',
	'-',
	'.',
	'/',
	'0',
	'1',
	'2',
	'3',
	'4',
	'5',
	'6',
	'7',
	'8',
	'9',
	':',
	';',
	'<',
	'=',
	'>',
	'?',
	'@',
	'A',
	'B',
	'C',
	'D',
	'E',
	'F',
	'G',
	'H',
	'I',
	'J',
	'K',
	'L',
	'M',
	'N',
	'O',
	'P',
	'Q',
	'R',
	'S',
	'T',
	'U',
	'V',
	'W',
	'X',
	'Y',
	'Z',
	'[',
	0x005C, // \
	']',
	'^',
	'_',
	'`',
	'a',
	'b',
	'c',
	'd',
	'e',
	'f',
	'g',
	'h',
	'i',
	'j',
	'k',
	'l',
	'm',
	'n',
	'o',
	'p',
	'q',
	'r',
	's',
	't',
	'u',
	'v',
	'w',
	'x',
	'y',
	'z',
	'{',
	'|',
	'}',
	'~',
	0x2302, // вҢӮ
	0x00C7, // ГҮ
	0x00FC, // Гј
	0x00E9, // Г©
	0x00E2, // Гў
	0x00E4, // ГӨ
	0x00E0, // Г 
	0x00E5, // ГҘ
	0x00E7, // Г§
	0x00EA, // ГӘ
	0x00EB, // Г«
	0x00E8, // ГЁ
	0x00EF, // ГҜ
	0x00EE, // Г®
	0x00EC, // Г¬
	0x00C4, // Г„
	0x00C5, // Г…
	0x00C9, // Гү
	0x00E6, // ГҰ
	0x00C6, // ГҶ
	0x00F4, // Гҙ
	0x00F6, // Г¶
	0x00F2, // ГІ
	0x00FB, // Г»
	0x00F9, // Г№
	0x00FF, // Гҝ
	0x00D6, // Г–
	0x00DC, // Гң
	0x00A2, // Вў
	0x00A3, // ВЈ
	0x00A5, // ВҘ
	0x20A7, // вӮ§
	0x0192, // Ж’
	0x00E1, // ГЎ
	0x00ED, // Гӯ
	0x00F3, // Гі
	0x00FA, // Гә
	0x00F1, // Гұ
	0x00D1, // Г‘
	0x00AA, // ВӘ
	0x00BA, // Вә
	0x00BF, // Вҝ
	0x2310, // вҢҗ
	0x00AC, // В¬
	0x00BD, // ВҪ
	0x00BC, // Вј
	0x00A1, // ВЎ
	0x00AB, // В«
	0x00BB, // В»
	0x2591, // в–‘
	0x2592, // в–’
	0x2593, // в–“
	0x2502, // в”Ӯ
	0x2524, // в”Ө
	0x2561, // в•Ў
	0x2562, // в•ў
	0x2556, // в•–
	0x2555, // в••
	0x2563, // в•Ј
	0x2551, // в•‘
	0x2557, // в•—
	0x255D, // в•қ
	0x255C, // в•ң
	0x255B, // в•ӣ
	0x2510, // в”җ
	0x2514, // в””
	0x2534, // в”ҙ
	0x252C, // в”¬
	0x251C, // в”ң
	0x2500, // в”Җ
	0x253C, // в”ј
	0x255E, // в•һ
	0x255F, // в•ҹ
	0x255A, // в•ҡ
	0x2554, // в•”
	0x2569, // в•©
	0x2566, // в•Ұ
	0x2560, // в• 
	0x2550, // в•җ
	0x256C, // в•¬
	0x2567, // в•§
	0x2568, // в•Ё
	0x2564, // в•Ө
	0x2565, // в•Ҙ
	0x2559, // в•ҷ
	0x2558, // в•ҳ
	0x2552, // в•’
	0x2553, // в•“
	0x256B, // в•«
	0x256A, // в•Ә
	0x2518, // в”ҳ
	0x250C, // в”Ң
	0x2588, // в–Ҳ
	0x2584, // в–„
	0x258C, // в–Ң
	0x2590, // в–җ
	0x2580, // в–Җ
	0x03B1, // Оұ
	0x00DF, // Гҹ
	0x0393, // О“
	0x03C0, // ПҖ
	0x03A3, // ОЈ
	0x03C3, // Пғ
	0x00B5, // Вө
	0x03C4, // П„
	0x03A6, // ОҰ
	0x0398, // Оҳ
	0x03A9, // О©
	0x03B4, // Оҙ
	0x221E, // вҲһ
	0x03C6, // ПҶ
	0x03B5, // Оө
	0x2229, // вҲ©
	0x2261, // вүЎ
	0x00B1, // Вұ
	0x2265, // вүҘ
	0x2264, // вүӨ
	0x2320, // вҢ 
	0x2321, // вҢЎ
	0x00F7, // Г·
	0x2248, // вүҲ
	0x00B0, // В°
	0x2219, // вҲҷ
	0x00B7, // В·
	0x221A, // вҲҡ
	0x207F, // вҒҝ
	0x00B2, // ВІ
	0x25A0, // в– 
	0x00A0, // NBSP
}
